package httpServer

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func (h *handler) adminAuthMiddleware(c *fiber.Ctx) error {
	accessToken := c.Get("Authorization")
	if accessToken == "" {
		return errorHandler(c, fiber.NewError(fiber.StatusUnauthorized, "unauthorized"))
	}

	if strings.HasPrefix(strings.ToLower(accessToken), "bearer ") {
		accessToken = accessToken[7:]
	}

	hash := md5.Sum([]byte(accessToken))
	tokenHash := fmt.Sprintf("%x", hash[:])

	if _, exists := h.adminAuthTokens[tokenHash]; !exists {
		return errorHandler(c, fiber.NewError(fiber.StatusForbidden, "forbidden"))
	}

	return c.Next()
}

func (h *handler) loggerMiddleware(c *fiber.Ctx) error {
	requestID := c.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDHeader, requestID)
	c.Locals("request_id", requestID)

	headers := c.GetReqHeaders()
	if _, ok := headers["Authorization"]; ok {
		headers["Authorization"] = []string{"REDACTED"}
	}

	if _, ok := headers["Cookie"]; ok {
		headers["Cookie"] = []string{"REDACTED"}
	}

	log := h.logger.With(
		slog.String("request_id", requestID),
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	log.Debug(
		"request received",
		"headers", headers,
		"body_length", len(c.Body()),
	)

	start := time.Now()
	err := c.Next()

	log.Info(
		"request completed",
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)

	return err
}
