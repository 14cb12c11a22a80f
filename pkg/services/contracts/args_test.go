package contracts

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

func testAddress(b byte) *address.Address {
	return address.NewAddress(0, 0, bytes.Repeat([]byte{b}, 32))
}

// decodeListModelArgs reads back the arguments written by Body for a
// list-model call.
func decodeListModelArgs(body *cell.Cell) ([]Arg, error) {
	s := body.BeginParse()
	if err := skipHeader(s); err != nil {
		return nil, err
	}

	price, err := s.LoadCoins()
	if err != nil {
		return nil, fmt.Errorf("load price: %w", err)
	}

	some, err := s.LoadBoolBit()
	if err != nil {
		return nil, fmt.Errorf("load payment token tag: %w", err)
	}

	if !some {
		return []Arg{UIntArg(price), NoneArg()}, nil
	}

	token, err := s.LoadAddr()
	if err != nil {
		return nil, fmt.Errorf("load payment token: %w", err)
	}

	return []Arg{UIntArg(price), SomeArg(token)}, nil
}

func TestListModelArgsWithoutTokenEncodesExplicitNone(t *testing.T) {
	args := listModelArgs(500, nil)

	require.Len(t, args, 2)
	require.Equal(t, ArgUInt, args[0].Kind)
	require.Equal(t, uint64(500), args[0].UInt)
	require.Equal(t, ArgOptionalPrincipal, args[1].Kind)
	require.False(t, args[1].IsSome())
}

func TestListModelArgsWithToken(t *testing.T) {
	token := testAddress(7)
	args := listModelArgs(500, token)

	require.Len(t, args, 2)
	require.True(t, args[1].IsSome())
	require.Equal(t, token.StringRaw(), args[1].Principal.StringRaw())
}

func TestBodyRoundTrip(t *testing.T) {
	for _, token := range []*address.Address{nil, testAddress(9)} {
		tx := ListingTransaction{
			ContractName: "ai-marketplace",
			Function:     functionListModel,
			QueryID:      42,
			FunctionArgs: listModelArgs(500, token),
		}

		body, err := tx.Body()
		require.NoError(t, err)

		op, queryID, err := parseCallHeader(body)
		require.NoError(t, err)
		require.Equal(t, callOp("ai-marketplace", functionListModel), op)
		require.Equal(t, uint64(42), queryID)

		args, err := decodeListModelArgs(body)
		require.NoError(t, err)
		require.Len(t, args, 2)
		require.Equal(t, uint64(500), args[0].UInt)
		require.Equal(t, token != nil, args[1].IsSome())
		if token != nil {
			require.Equal(t, token.StringRaw(), args[1].Principal.StringRaw())
		}
	}
}

func TestNoneVariantIsSerialized(t *testing.T) {
	withNone, err := ListingTransaction{
		ContractName: "ai-marketplace",
		Function:     functionListModel,
		FunctionArgs: listModelArgs(1, nil),
	}.Body()
	require.NoError(t, err)

	priceOnly, err := ListingTransaction{
		ContractName: "ai-marketplace",
		Function:     functionListModel,
		FunctionArgs: []Arg{UIntArg(1)},
	}.Body()
	require.NoError(t, err)

	require.Equal(t, priceOnly.BitsSize()+1, withNone.BitsSize())
}

func TestBodyRejectsUnknownArgKind(t *testing.T) {
	_, err := ListingTransaction{
		ContractName: "ai-marketplace",
		Function:     functionListModel,
		FunctionArgs: []Arg{{Kind: 99}},
	}.Body()
	require.Error(t, err)
}

func TestCallOpDependsOnContractName(t *testing.T) {
	require.NotEqual(t, callOp("ai-marketplace", functionListModel), callOp("other", functionListModel))
	require.NotEqual(t, callOp("ai-marketplace", functionListModel), callOp("ai-marketplace", eventListingCreated))
}

func TestParsePrincipal(t *testing.T) {
	addr := testAddress(3)

	parsed, err := ParsePrincipal(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr.StringRaw(), parsed.StringRaw())

	parsed, err = ParsePrincipal(addr.StringRaw())
	require.NoError(t, err)
	require.Equal(t, addr.StringRaw(), parsed.StringRaw())

	_, err = ParsePrincipal("not-an-address")
	require.Error(t, err)
}
