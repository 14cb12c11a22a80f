package walletworker

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
)

type walletClient interface {
	WalletAddress() *address.Address
	WalletBalance(ctx context.Context) (balance tlb.Coins, err error)
}

type walletWorker struct {
	client     walletClient
	minBalance tlb.Coins
	balance    prometheus.Gauge
	logger     *slog.Logger
}

type Worker interface {
	CheckBalance(ctx context.Context) (interval time.Duration, err error)
}

// CheckBalance exports the signer wallet balance and warns when it drops
// below the configured minimum. Listing calls fail once the wallet cannot
// pay for the attached amount and fees.
func (w *walletWorker) CheckBalance(ctx context.Context) (interval time.Duration, err error) {
	const (
		failureInterval = 10 * time.Second
		successInterval = 5 * time.Minute
	)

	log := w.logger.With(
		slog.String("worker", "CheckBalance"),
		slog.String("wallet", w.client.WalletAddress().String()),
	)

	interval = successInterval

	balance, err := w.client.WalletBalance(ctx)
	if err != nil {
		err = fmt.Errorf("failed to get wallet balance: %w", err)
		interval = failureInterval
		return
	}

	if v, pErr := strconv.ParseFloat(balance.String(), 64); pErr == nil {
		w.balance.Set(v)
	}

	if balance.Nano().Cmp(w.minBalance.Nano()) < 0 {
		log.Warn("wallet balance is below minimum",
			slog.String("balance", balance.String()),
			slog.String("min_balance", w.minBalance.String()),
		)
		return
	}

	log.Debug("wallet balance checked", slog.String("balance", balance.String()))

	return
}

func NewWorker(client walletClient, minBalance tlb.Coins, balance prometheus.Gauge, logger *slog.Logger) Worker {
	return &walletWorker{
		client:     client,
		minBalance: minBalance,
		balance:    balance,
		logger:     logger,
	}
}
