package marketplace

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	svc         Marketplace
}

func (m *metricsMiddleware) UploadModel(ctx context.Context, req v1.UploadModelRequest) (resp v1.UploadModelResponse, err error) {
	defer func(s time.Time) {
		labels := []string{
			"UploadModel", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.svc.UploadModel(ctx, req)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, svc Marketplace) Marketplace {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}
