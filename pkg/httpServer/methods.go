package httpServer

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-marketplace-backend/pkg/clients/ipfs"
	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

const modelFileField = "modelFile"

func (h *handler) uploadModel(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	req := v1.UploadModelRequest{
		Price:        c.FormValue("price"),
		PaymentToken: c.FormValue("paymentToken"),
	}

	// A missing part is reported by the marketplace as a validation error.
	if fh, err := c.FormFile(modelFileField); err == nil {
		req.File, err = readModelFile(fh)
		if err != nil {
			log.Error("failed to read model file", slog.String("error", err.Error()))
			return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid model file"))
		}
	}

	// The chain transaction is not rolled back if the client goes away.
	ctx := context.WithoutCancel(c.UserContext())

	resp, err := h.marketplace.UploadModel(ctx, req)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(resp)
}

func (h *handler) listingStatus(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	queryID, err := strconv.ParseUint(c.Params("query_id"), 10, 64)
	if err != nil {
		log.Info("invalid query id", slog.String("query_id", c.Params("query_id")))
		return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid query id"))
	}

	// since is unix seconds; the listing call must not be older than it
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		sec, pErr := strconv.ParseInt(raw, 10, 64)
		if pErr != nil || sec <= 0 {
			log.Info("invalid since", slog.String("since", raw))
			return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid since"))
		}
		since = time.Unix(sec, 0)
	}

	status, err := h.listings.LookupListing(c.UserContext(), queryID, since)
	if err != nil {
		return errorHandler(c, err)
	}

	return c.JSON(status)
}

func (h *handler) getModel(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	contentID := c.Params("cid")
	if err := ipfs.ValidateCID(contentID); err != nil {
		log.Info("invalid cid", slog.String("cid", contentID))
		return errorHandler(c, fiber.NewError(fiber.StatusBadRequest, "invalid cid"))
	}

	data, err := h.storage.Get(c.UserContext(), contentID)
	if err != nil {
		if errors.Is(err, ipfs.ErrNotFound) {
			return errorHandler(c, fiber.NewError(fiber.StatusNotFound, "model not found"))
		}

		log.Error("failed to fetch model", slog.String("cid", contentID), slog.String("error", err.Error()))
		return errorHandler(c, fiber.NewError(fiber.StatusBadGateway, "storage unavailable"))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}

func (h *handler) health(c *fiber.Ctx) error {
	return okHandler(c)
}

func (h *handler) metrics(c *fiber.Ctx) error {
	m := promhttp.Handler()

	return adaptor.HTTPHandler(m)(c)
}
