package httpServer

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

func (m *metrics) metricsMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fErr, ok := err.(*fiber.Error); ok {
			status = fErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	path := c.Route().Path
	labels := []string{c.Method(), path, strconv.Itoa(status)}

	m.reqCount.WithLabelValues(labels...).Inc()
	m.reqDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

	return err
}

func newMetrics(namespace, subsystem string) *metrics {
	m := &metrics{
		reqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_count",
				Help:      "HTTP requests count",
			},
			[]string{"method", "path", "status"},
		),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_duration",
				Help:      "HTTP requests duration",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.reqCount, m.reqDuration} {
		if err := prometheus.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := are.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					m.reqCount = existing
				case *prometheus.HistogramVec:
					m.reqDuration = existing
				}
			}
		}
	}

	return m
}
