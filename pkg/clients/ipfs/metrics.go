package ipfs

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	svc         Client
}

func (m *metricsMiddleware) Put(ctx context.Context, fileName string, data []byte) (contentID string, err error) {
	defer func(s time.Time) {
		labels := []string{
			"IpfsPut", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.svc.Put(ctx, fileName, data)
}

func (m *metricsMiddleware) Get(ctx context.Context, contentID string) (data []byte, err error) {
	defer func(s time.Time) {
		labels := []string{
			"IpfsGet", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.svc.Get(ctx, contentID)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, svc Client) Client {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}
