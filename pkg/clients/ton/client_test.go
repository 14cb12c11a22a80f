package tonclient

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"

	"ai-marketplace-backend/pkg/models"
)

// fakeAPI serves a fixed chain of transactions (oldest first) and records the
// external messages it is asked to broadcast. The chain never produces a
// block, so wallet state stays the same between sends.
type fakeAPI struct {
	ton.APIClientWrapped

	mu         sync.Mutex
	sent       []*tlb.ExternalMessage
	accountErr error
	sendErr    error
	chain      []*tlb.Transaction
}

func (f *fakeAPI) CurrentMasterchainInfo(context.Context) (*ton.BlockIDExt, error) {
	return &ton.BlockIDExt{SeqNo: 1}, nil
}

func (f *fakeAPI) WaitForBlock(uint32) ton.APIClientWrapped {
	return f
}

func (f *fakeAPI) GetAccount(context.Context, *ton.BlockIDExt, *address.Address) (*tlb.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}

	acc := &tlb.Account{IsActive: true}
	if n := len(f.chain); n > 0 {
		acc.LastTxLT = f.chain[n-1].LT
		acc.LastTxHash = f.chain[n-1].Hash
	}
	return acc, nil
}

func (f *fakeAPI) SendExternalMessage(_ context.Context, msg *tlb.ExternalMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeAPI) ListTransactions(_ context.Context, _ *address.Address, limit uint32, lt uint64, _ []byte) ([]*tlb.Transaction, error) {
	for i, tx := range f.chain {
		if tx.LT != lt {
			continue
		}

		from := i + 1 - int(limit)
		if from < 0 {
			from = 0
		}
		return f.chain[from : i+1], nil
	}

	return nil, ton.ErrNoTransactionsWereFound
}

func testKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(bytes.Repeat([]byte{3}, ed25519.SeedSize))
}

func testAddress(b byte) *address.Address {
	return address.NewAddress(0, 0, bytes.Repeat([]byte{b}, 32))
}

func newTestClient(t *testing.T, api *fakeAPI) *client {
	t.Helper()

	c, err := newClient(api, testKey(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func listingMessage() *wallet.Message {
	body := cell.BeginCell().MustStoreUInt(0x1234, 32).MustStoreUInt(1, 64).EndCell()
	return wallet.SimpleMessage(testAddress(1), tlb.MustFromTON("0.05"), body)
}

// walletQueryID reads the highload wallet query id out of a signed external
// message body.
func walletQueryID(t *testing.T, ext *tlb.ExternalMessage) uint64 {
	t.Helper()

	s := ext.Body.BeginParse()
	_, err := s.LoadSlice(512)
	require.NoError(t, err)

	payload, err := s.LoadRef()
	require.NoError(t, err)

	_, err = payload.LoadUInt(32)
	require.NoError(t, err)
	_, err = payload.LoadRef()
	require.NoError(t, err)
	_, err = payload.LoadUInt(8)
	require.NoError(t, err)

	queryID, err := payload.LoadUInt(23)
	require.NoError(t, err)
	return queryID
}

func TestConcurrentSendsGetDistinctWalletQueries(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	const parallel = 8

	var wg sync.WaitGroup
	hashes := make([][]byte, parallel)
	errs := make([]error, parallel)
	for i := range parallel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sent, err := c.Send(context.Background(), listingMessage())
			hashes[i], errs[i] = sent.Hash, err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, api.sent, parallel)

	queries := make(map[uint64]struct{})
	for _, ext := range api.sent {
		queries[walletQueryID(t, ext)] = struct{}{}
	}
	require.Len(t, queries, parallel)

	seen := make(map[string]struct{})
	for _, h := range hashes {
		seen[string(h)] = struct{}{}
	}
	require.Len(t, seen, parallel)
}

func TestWalletQueriesSkipUnusableBitNumber(t *testing.T) {
	q := &walletQueries{now: time.Now}
	q.next.Store(bitNumberMask - 1)

	id, createdAt, err := q.build(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, uint32(bitNumberMask+1), id)
	require.Less(t, createdAt, time.Now().Unix())

	q.next.Store(maxWalletQueryID - 1)
	id, _, err = q.build(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, uint32(0), id)
}

func TestSendClassifiesFailures(t *testing.T) {
	t.Run("wallet state unavailable", func(t *testing.T) {
		api := &fakeAPI{accountErr: errors.New("liteserver timeout")}
		c := newTestClient(t, api)

		_, err := c.Send(context.Background(), listingMessage())
		require.ErrorIs(t, err, models.ErrBroadcastRejected)
		require.NotErrorIs(t, err, models.ErrSigning)
		require.Empty(t, api.sent)
	})

	t.Run("message cannot be built", func(t *testing.T) {
		api := &fakeAPI{}
		w, err := wallet.FromPrivateKey(api, testKey(), wallet.ConfigHighloadV3{
			MessageTTL:     3,
			MessageBuilder: newWalletQueries().build,
		})
		require.NoError(t, err)

		c := &client{api: api, wallet: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
		_, err = c.Send(context.Background(), listingMessage())
		require.ErrorIs(t, err, models.ErrSigning)
		require.Empty(t, api.sent)
	})

	t.Run("liteserver rejects", func(t *testing.T) {
		api := &fakeAPI{sendErr: errors.New("cannot apply external message")}
		c := newTestClient(t, api)

		_, err := c.Send(context.Background(), listingMessage())
		require.ErrorIs(t, err, models.ErrBroadcastRejected)
	})
}

func testChain(n int) []*tlb.Transaction {
	chain := make([]*tlb.Transaction, 0, n)
	for i := 1; i <= n; i++ {
		tx := &tlb.Transaction{
			LT:   uint64(i),
			Now:  uint32(1_700_000_000 + i),
			Hash: bytes.Repeat([]byte{byte(i)}, 32),
		}
		if i > 1 {
			tx.PrevTxLT = uint64(i - 1)
			tx.PrevTxHash = bytes.Repeat([]byte{byte(i - 1)}, 32)
		}
		chain = append(chain, tx)
	}
	return chain
}

func TestContractTransactionsPagesBackwards(t *testing.T) {
	api := &fakeAPI{chain: testChain(5)}
	c := newTestClient(t, api)

	var lts []uint64
	var cursor *Cursor
	for page := 0; ; page++ {
		require.Less(t, page, 5)

		txs, next, err := c.ContractTransactions(context.Background(), testAddress(1), 2, cursor)
		require.NoError(t, err)
		for _, tx := range txs {
			lts = append(lts, tx.LT)
		}
		if next == nil {
			break
		}
		cursor = next
	}

	require.Equal(t, []uint64{5, 4, 3, 2, 1}, lts)
}

func TestContractTransactionsEmptyAccount(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	txs, next, err := c.ContractTransactions(context.Background(), testAddress(1), 10, nil)
	require.NoError(t, err)
	require.Empty(t, txs)
	require.Nil(t, next)
}

func outList(t *testing.T, msgs ...any) *tlb.MessagesList {
	t.Helper()

	dict := cell.NewDict(15)
	for i, m := range msgs {
		c, err := tlb.ToCell(m)
		require.NoError(t, err)
		require.NoError(t, dict.SetIntKey(big.NewInt(int64(i)), cell.BeginCell().MustStoreRef(c).EndCell()))
	}
	return &tlb.MessagesList{List: dict}
}

func TestConvertTransactionReadsCallAndEvents(t *testing.T) {
	sender := testAddress(2)
	contract := testAddress(1)
	call := cell.BeginCell().MustStoreUInt(0xaa, 32).MustStoreUInt(7, 64).EndCell()
	event := cell.BeginCell().MustStoreUInt(0xbb, 32).MustStoreUInt(7, 64).MustStoreUInt(9, 64).EndCell()

	tx := &tlb.Transaction{LT: 10, Now: 1_700_000_000, Hash: []byte{1}}
	tx.IO.In = &tlb.Message{
		MsgType: tlb.MsgTypeInternal,
		Msg: &tlb.InternalMessage{
			SrcAddr: sender,
			DstAddr: contract,
			Amount:  tlb.MustFromTON("0.05"),
			Body:    call,
		},
	}
	tx.IO.Out = outList(t,
		&tlb.InternalMessage{SrcAddr: contract, DstAddr: sender, Amount: tlb.MustFromTON("0.01"), Body: cell.BeginCell().EndCell()},
		&tlb.ExternalMessageOut{SrcAddr: contract, Body: event},
	)

	got := convertTransaction(tx)
	require.Equal(t, uint64(10), got.LT)
	require.Equal(t, time.Unix(1_700_000_000, 0), got.CreatedAt)
	require.Equal(t, sender.StringRaw(), got.From.StringRaw())
	require.False(t, got.Bounced)
	require.Equal(t, call.Hash(), got.Body.Hash())
	require.Len(t, got.Events, 1)
	require.Equal(t, event.Hash(), got.Events[0].Hash())
}

func TestConvertTransactionWithoutInboundMessage(t *testing.T) {
	tx := &tlb.Transaction{LT: 3}
	tx.IO.Out = outList(t, &tlb.ExternalMessageOut{SrcAddr: testAddress(1), Body: cell.BeginCell().MustStoreUInt(1, 32).EndCell()})

	got := convertTransaction(tx)
	require.Nil(t, got.From)
	require.Nil(t, got.Body)
	require.Len(t, got.Events, 1)
}

func TestConvertTransactionInternalOutboundOnly(t *testing.T) {
	sender := testAddress(2)
	contract := testAddress(1)

	tx := &tlb.Transaction{LT: 4}
	tx.IO.In = &tlb.Message{
		MsgType: tlb.MsgTypeInternal,
		Msg: &tlb.InternalMessage{
			Bounced: true,
			SrcAddr: sender,
			DstAddr: contract,
			Body:    cell.BeginCell().EndCell(),
		},
	}
	tx.IO.Out = outList(t, &tlb.InternalMessage{SrcAddr: contract, DstAddr: sender, Body: cell.BeginCell().EndCell()})

	got := convertTransaction(tx)
	require.True(t, got.Bounced)
	require.Equal(t, sender.StringRaw(), got.From.StringRaw())
	require.Empty(t, got.Events)
}
