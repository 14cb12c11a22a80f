package tonclient

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	client      Client
}

func (m *metricsMiddleware) WalletAddress() *address.Address {
	return m.client.WalletAddress()
}

func (m *metricsMiddleware) Send(ctx context.Context, msg *wallet.Message) (sent SentMessage, err error) {
	defer func(s time.Time) {
		labels := []string{
			"TonSend", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.client.Send(ctx, msg)
}

func (m *metricsMiddleware) ContractTransactions(ctx context.Context, addr *address.Address, limit uint32, from *Cursor) (txs []Transaction, next *Cursor, err error) {
	defer func(s time.Time) {
		labels := []string{
			"TonContractTransactions", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.client.ContractTransactions(ctx, addr, limit, from)
}

func (m *metricsMiddleware) WalletBalance(ctx context.Context) (balance tlb.Coins, err error) {
	defer func(s time.Time) {
		labels := []string{
			"TonWalletBalance", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.client.WalletBalance(ctx)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, client Client) Client {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		client:      client,
	}
}
