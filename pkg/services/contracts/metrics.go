package contracts

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xssnick/tonutils-go/address"

	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	svc         Contracts
}

func (m *metricsMiddleware) ListModel(ctx context.Context, price uint64, paymentToken *address.Address) (listing v1.Listing, err error) {
	defer func(s time.Time) {
		labels := []string{
			"ListModel", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.svc.ListModel(ctx, price, paymentToken)
}

func (m *metricsMiddleware) LookupListing(ctx context.Context, queryID uint64, since time.Time) (status v1.ListingStatus, err error) {
	defer func(s time.Time) {
		labels := []string{
			"LookupListing", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.svc.LookupListing(ctx, queryID, since)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, svc Contracts) Contracts {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}
