package httpServer

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

type marketplace interface {
	UploadModel(ctx context.Context, req v1.UploadModelRequest) (resp v1.UploadModelResponse, err error)
}

type listings interface {
	LookupListing(ctx context.Context, queryID uint64, since time.Time) (status v1.ListingStatus, err error)
}

type storage interface {
	Get(ctx context.Context, contentID string) ([]byte, error)
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	IpfsCID string `json:"ipfsCid,omitempty"`
	QueryID uint64 `json:"queryId,omitempty"`
}

type handler struct {
	server          *fiber.App
	logger          *slog.Logger
	marketplace     marketplace
	listings        listings
	storage         storage
	namespace       string
	subsystem       string
	adminAuthTokens map[string]struct{}
	allowedOrigins  string
}

func New(
	server *fiber.App,
	marketplace marketplace,
	listings listings,
	storage storage,
	adminAuthTokens []string,
	allowedOrigins string,
	namespace string,
	subsystem string,
	logger *slog.Logger,
) *handler {
	adminTokensMap := make(map[string]struct{})
	for _, token := range adminAuthTokens {
		if token == "" {
			continue
		}
		adminTokensMap[token] = struct{}{}
	}

	h := &handler{
		server:          server,
		marketplace:     marketplace,
		listings:        listings,
		storage:         storage,
		namespace:       namespace,
		subsystem:       subsystem,
		adminAuthTokens: adminTokensMap,
		allowedOrigins:  allowedOrigins,
		logger:          logger,
	}

	return h
}
