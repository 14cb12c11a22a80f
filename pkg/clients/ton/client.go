package tonclient

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"ai-marketplace-backend/pkg/models"
	"ai-marketplace-backend/pkg/utils"
)

const (
	readRetries        = 3
	retries            = 20
	singleQueryTimeout = 5 * time.Second
)

type client struct {
	api    ton.APIClientWrapped
	wallet *wallet.Wallet
	logger *slog.Logger
}

type Client interface {
	WalletAddress() *address.Address
	Send(ctx context.Context, msg *wallet.Message) (sent SentMessage, err error)
	ContractTransactions(ctx context.Context, addr *address.Address, limit uint32, from *Cursor) (txs []Transaction, next *Cursor, err error)
	WalletBalance(ctx context.Context) (balance tlb.Coins, err error)
}

func (c *client) WalletAddress() *address.Address {
	return c.wallet.WalletAddress()
}

// Send signs msg with the service wallet and broadcasts it once. Broadcast is
// never retried: a resend is the caller's decision.
func (c *client) Send(ctx context.Context, msg *wallet.Message) (sent SentMessage, err error) {
	log := c.logger.With(
		slog.String("method", "Send"),
		slog.String("to", msg.InternalMessage.DstAddr.String()),
	)

	var active bool
	err = utils.TryNTimes(func() error {
		block, bErr := c.api.CurrentMasterchainInfo(ctx)
		if bErr != nil {
			return bErr
		}

		acc, aErr := c.api.WaitForBlock(block.SeqNo).GetAccount(ctx, block, c.wallet.WalletAddress())
		if aErr != nil {
			return aErr
		}

		active = acc.IsActive
		return nil
	}, readRetries)
	if err != nil {
		err = fmt.Errorf("%w: failed to get wallet state: %w", models.ErrBroadcastRejected, err)
		return
	}

	// The highload wallet builds and signs locally, so a failure here is a
	// key or message construction problem.
	ext, err := c.wallet.PrepareExternalMessageForMany(ctx, !active, []*wallet.Message{msg})
	if err != nil {
		err = fmt.Errorf("%w: failed to build external message: %w", models.ErrSigning, err)
		return
	}

	extCell, err := tlb.ToCell(ext)
	if err != nil {
		err = fmt.Errorf("%w: failed to serialize external message: %w", models.ErrSigning, err)
		return
	}

	if err = c.api.SendExternalMessage(ctx, ext); err != nil {
		log.Error("external message rejected", slog.String("error", err.Error()))
		err = fmt.Errorf("%w: %w", models.ErrBroadcastRejected, err)
		return
	}

	sent = SentMessage{
		Hash: extCell.Hash(),
		From: c.wallet.WalletAddress(),
	}

	log.Debug("external message sent", slog.String("hash", fmt.Sprintf("%x", sent.Hash)))

	return
}

// ContractTransactions returns up to limit transactions of addr, newest
// first, starting at from or at the latest one when from is nil. next is nil
// when the account has no older transactions.
func (c *client) ContractTransactions(ctx context.Context, addr *address.Address, limit uint32, from *Cursor) (txs []Transaction, next *Cursor, err error) {
	var list []*tlb.Transaction
	err = utils.TryNTimes(func() error {
		start := from
		if start == nil {
			block, bErr := c.api.CurrentMasterchainInfo(ctx)
			if bErr != nil {
				return bErr
			}

			acc, aErr := c.api.WaitForBlock(block.SeqNo).GetAccount(ctx, block, addr)
			if aErr != nil {
				return aErr
			}

			if !acc.IsActive || acc.LastTxLT == 0 {
				list = nil
				return nil
			}

			start = &Cursor{LT: acc.LastTxLT, Hash: acc.LastTxHash}
		}

		var lErr error
		list, lErr = c.api.ListTransactions(ctx, addr, limit, start.LT, start.Hash)
		if errors.Is(lErr, ton.ErrNoTransactionsWereFound) {
			list = nil
			return nil
		}
		return lErr
	}, readRetries)
	if err != nil {
		err = fmt.Errorf("list contract transactions err: %w", err)
		return
	}

	if len(list) == 0 {
		return nil, nil, nil
	}

	// liteservers return the page oldest first
	txs = make([]Transaction, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		txs = append(txs, convertTransaction(list[i]))
	}

	if oldest := list[0]; oldest.PrevTxLT != 0 {
		next = &Cursor{LT: oldest.PrevTxLT, Hash: oldest.PrevTxHash}
	}

	return
}

func (c *client) WalletBalance(ctx context.Context) (balance tlb.Coins, err error) {
	block, err := c.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		err = fmt.Errorf("get masterchain info err: %w", err)
		return
	}

	acc, err := c.api.WaitForBlock(block.SeqNo).GetAccount(ctx, block, c.wallet.WalletAddress())
	if err != nil {
		err = fmt.Errorf("get account err: %w", err)
		return
	}

	if !acc.IsActive || acc.State == nil {
		return tlb.MustFromTON("0"), nil
	}

	return acc.State.Balance, nil
}

func convertTransaction(tx *tlb.Transaction) Transaction {
	t := Transaction{
		Hash:      tx.Hash,
		LT:        tx.LT,
		CreatedAt: time.Unix(int64(tx.Now), 0),
	}

	if tx.IO.In != nil && tx.IO.In.MsgType == tlb.MsgTypeInternal {
		in := tx.IO.In.AsInternal()
		t.From = in.SrcAddr
		t.Body = in.Body
		t.Bounced = in.Bounced
	}

	if tx.IO.Out != nil {
		out, err := tx.IO.Out.ToSlice()
		if err != nil {
			return t
		}

		for _, m := range out {
			if m.MsgType != tlb.MsgTypeExternalOut {
				continue
			}
			if body := m.AsExternalOut().Body; body != nil {
				t.Events = append(t.Events, body)
			}
		}
	}

	return t
}

func NewClient(ctx context.Context, configUrl string, key ed25519.PrivateKey, logger *slog.Logger) (Client, error) {
	clientPool := liteclient.NewConnectionPool()

	err := clientPool.AddConnectionsFromConfigUrl(ctx, configUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to add liteserver connections: %w", err)
	}

	api := ton.NewAPIClient(clientPool).WithTimeout(singleQueryTimeout).WithRetry(retries)

	c, err := newClient(api, key, logger)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func newClient(api ton.APIClientWrapped, key ed25519.PrivateKey, logger *slog.Logger) (*client, error) {
	queries := newWalletQueries()

	w, err := wallet.FromPrivateKey(api, key, wallet.ConfigHighloadV3{
		MessageTTL:     messageTTL,
		MessageBuilder: queries.build,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to init wallet: %w", models.ErrSigning, err)
	}

	return &client{
		api:    api,
		wallet: w,
		logger: logger,
	}, nil
}
