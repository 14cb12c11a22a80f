package contracts

import (
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	functionListModel   = "list-model"
	eventListingCreated = "listing-created"
)

type ArgKind uint8

const (
	ArgUInt ArgKind = iota + 1
	ArgOptionalPrincipal
)

// Arg is a typed positional argument of a contract call. For
// ArgOptionalPrincipal a nil Principal is the explicit none variant.
type Arg struct {
	Kind      ArgKind
	UInt      uint64
	Principal *address.Address
}

func UIntArg(v uint64) Arg {
	return Arg{Kind: ArgUInt, UInt: v}
}

func NoneArg() Arg {
	return Arg{Kind: ArgOptionalPrincipal}
}

func SomeArg(p *address.Address) Arg {
	return Arg{Kind: ArgOptionalPrincipal, Principal: p}
}

func (a Arg) IsSome() bool {
	return a.Kind == ArgOptionalPrincipal && a.Principal != nil
}

// ListingTransaction is built fresh for every listing and must not be reused
// after it was sent.
type ListingTransaction struct {
	ContractAddress *address.Address
	ContractName    string
	Function        string
	Sender          *address.Address
	QueryID         uint64
	FunctionArgs    []Arg
}

// callOp derives the 32-bit op code of a contract entry point or event.
func callOp(contractName, name string) uint32 {
	return crc32.ChecksumIEEE([]byte(contractName + "::" + name))
}

func listModelArgs(price uint64, paymentToken *address.Address) []Arg {
	if paymentToken == nil {
		return []Arg{UIntArg(price), NoneArg()}
	}

	return []Arg{UIntArg(price), SomeArg(paymentToken)}
}

// Body serializes the call as op:uint32 query_id:uint64 followed by every
// argument in order. uint is stored as Coins, optional as a tag bit plus
// MsgAddress when present.
func (t ListingTransaction) Body() (*cell.Cell, error) {
	b := cell.BeginCell()

	if err := b.StoreUInt(uint64(callOp(t.ContractName, t.Function)), 32); err != nil {
		return nil, fmt.Errorf("store op: %w", err)
	}

	if err := b.StoreUInt(t.QueryID, 64); err != nil {
		return nil, fmt.Errorf("store query id: %w", err)
	}

	for i, a := range t.FunctionArgs {
		if err := storeArg(b, a); err != nil {
			return nil, fmt.Errorf("store arg %d: %w", i, err)
		}
	}

	return b.EndCell(), nil
}

func storeArg(b *cell.Builder, a Arg) error {
	switch a.Kind {
	case ArgUInt:
		return b.StoreCoins(a.UInt)
	case ArgOptionalPrincipal:
		if a.Principal == nil {
			return b.StoreBoolBit(false)
		}
		if err := b.StoreBoolBit(true); err != nil {
			return err
		}
		return b.StoreAddr(a.Principal)
	default:
		return fmt.Errorf("unknown arg kind %d", a.Kind)
	}
}

func parseCallHeader(body *cell.Cell) (op uint32, queryID uint64, err error) {
	if body == nil {
		return 0, 0, errors.New("empty body")
	}

	s := body.BeginParse()

	rawOp, err := s.LoadUInt(32)
	if err != nil {
		return 0, 0, fmt.Errorf("load op: %w", err)
	}

	queryID, err = s.LoadUInt(64)
	if err != nil {
		return 0, 0, fmt.Errorf("load query id: %w", err)
	}

	return uint32(rawOp), queryID, nil
}

func skipHeader(s *cell.Slice) error {
	if _, err := s.LoadUInt(32); err != nil {
		return fmt.Errorf("skip op: %w", err)
	}
	if _, err := s.LoadUInt(64); err != nil {
		return fmt.Errorf("skip query id: %w", err)
	}
	return nil
}

// parseListingEvent reads op:uint32 query_id:uint64 listing_id:uint64.
func parseListingEvent(body *cell.Cell, expectedOp uint32) (queryID, listingID uint64, err error) {
	op, queryID, err := parseCallHeader(body)
	if err != nil {
		return 0, 0, err
	}

	if op != expectedOp {
		return 0, 0, fmt.Errorf("unexpected event op %x", op)
	}

	s := body.BeginParse()
	if err = skipHeader(s); err != nil {
		return 0, 0, err
	}

	listingID, err = s.LoadUInt(64)
	if err != nil {
		return 0, 0, fmt.Errorf("load listing id: %w", err)
	}

	return queryID, listingID, nil
}

// ParsePrincipal accepts user-friendly and raw (workchain:hex) addresses.
func ParsePrincipal(s string) (*address.Address, error) {
	addr, err := address.ParseAddr(s)
	if err == nil {
		return addr, nil
	}

	raw, rErr := address.ParseRawAddr(s)
	if rErr != nil {
		return nil, err
	}

	return raw, nil
}
