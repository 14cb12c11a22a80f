package httpServer

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"ai-marketplace-backend/pkg/models"
	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

func (h *handler) limitReached(c *fiber.Ctx) error {
	log := h.logger.With(
		slog.String("method", "limitReached"),
		slog.String("http_method", c.Method()),
		slog.String("url", c.OriginalURL()),
	)

	log.Warn("rate limit reached for request")
	return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later")
}

func readModelFile(fh *multipart.FileHeader) (*v1.ModelFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &v1.ModelFile{
		Name: fh.Filename,
		Data: data,
	}, nil
}

func okHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fErr *fiber.Error
	if errors.As(err, &fErr) {
		return c.Status(fErr.Code).JSON(errorResponse{
			Error: fErr.Message,
		})
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Code > 500 {
			msg = "internal server error"
		}

		return c.Status(appErr.Code).JSON(errorResponse{
			Error:   msg,
			Kind:    appErr.KindName(),
			IpfsCID: appErr.CID,
			QueryID: appErr.QueryID,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Error: err.Error(),
		Kind:  models.KindName(err),
	})
}
