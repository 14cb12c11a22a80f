package httpServer

import (
	"time"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const (
	MaxRequests     = 30
	RateLimitWindow = 60 * time.Second
)

func (h *handler) RegisterRoutes() {
	h.logger.Info("Registering routes")

	h.server.Use(cors.New(cors.Config{
		AllowOrigins: h.allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Accept, Content-Type, Content-Length, Authorization, X-Request-ID",
	}))

	m := newMetrics(h.namespace, h.subsystem)

	h.server.Use(m.metricsMiddleware)

	h.server.Use(limiter.New(limiter.Config{
		Max:               MaxRequests,
		Expiration:        RateLimitWindow,
		LimitReached:      h.limitReached,
		LimiterMiddleware: limiter.SlidingWindow{},
	}))

	h.server.Get("/health", h.health)
	h.server.Get("/metrics", h.adminAuthMiddleware, h.metrics)

	api := h.server.Group("/api", h.loggerMiddleware)
	{
		api.Post("/upload-model", h.uploadModel)
		api.Get("/listings/:query_id", h.listingStatus)
		api.Get("/models/:cid", h.getModel)
	}
}
