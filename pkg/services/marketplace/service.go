package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xssnick/tonutils-go/address"

	"ai-marketplace-backend/pkg/models"
	v1 "ai-marketplace-backend/pkg/models/api/v1"
	"ai-marketplace-backend/pkg/services/contracts"
)

type storage interface {
	Put(ctx context.Context, fileName string, data []byte) (string, error)
}

type listings interface {
	ListModel(ctx context.Context, price uint64, paymentToken *address.Address) (v1.Listing, error)
}

type service struct {
	storage  storage
	listings listings
	logger   *slog.Logger
}

type Marketplace interface {
	UploadModel(ctx context.Context, req v1.UploadModelRequest) (resp v1.UploadModelResponse, err error)
}

// UploadModel stores the model file and lists it on the marketplace
// contract, strictly in that order. A listing failure carries the CID of the
// stored file.
func (s *service) UploadModel(ctx context.Context, req v1.UploadModelRequest) (resp v1.UploadModelResponse, err error) {
	log := s.logger.With(
		slog.String("method", "UploadModel"),
		slog.String("price", req.Price),
		slog.String("payment_token", req.PaymentToken),
	)

	price, token, err := validate(req)
	if err != nil {
		log.Info("invalid upload request", slog.String("error", err.Error()))
		return
	}

	log = log.With(
		slog.String("file_name", req.File.Name),
		slog.Int("file_size", len(req.File.Data)),
	)

	cid, err := s.storage.Put(ctx, req.File.Name, req.File.Data)
	if err != nil {
		log.Error("failed to upload model to storage", slog.String("error", err.Error()))
		err = models.NewKindError(models.ErrStorageUnavailable, "failed to upload model to storage")
		return
	}

	log = log.With(slog.String("cid", cid))

	listing, err := s.listings.ListModel(ctx, price, token)
	if err != nil {
		log.Error("failed to list model", slog.String("error", err.Error()))
		err = listingError(err, cid)
		return
	}

	log.Info("model uploaded and listed", slog.Uint64("token_id", listing.ID))

	resp = v1.UploadModelResponse{
		Success: true,
		TokenID: listing.ID,
		IpfsCID: cid,
	}

	return
}

func validate(req v1.UploadModelRequest) (price uint64, token *address.Address, err error) {
	if req.File == nil {
		return 0, nil, models.NewKindError(models.ErrValidation, "File missing")
	}

	if len(req.File.Data) == 0 {
		return 0, nil, models.NewKindError(models.ErrValidation, "File is empty")
	}

	rawPrice := strings.TrimSpace(req.Price)
	if rawPrice == "" {
		return 0, nil, models.NewKindError(models.ErrValidation, "Price missing")
	}

	price, pErr := strconv.ParseUint(rawPrice, 10, 64)
	if pErr != nil || price == 0 {
		return 0, nil, models.NewKindError(models.ErrValidation, "price must be a positive integer")
	}

	if rawToken := strings.TrimSpace(req.PaymentToken); rawToken != "" {
		token, err = contracts.ParsePrincipal(rawToken)
		if err != nil {
			return 0, nil, models.NewKindError(models.ErrValidation, "invalid payment token address")
		}
	}

	return price, token, nil
}

func listingError(err error, cid string) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.WithCID(cid)
	}

	kind := models.ErrBroadcastRejected
	for _, k := range []error{models.ErrSigning, models.ErrConfirmationTimeout} {
		if errors.Is(err, k) {
			kind = k
		}
	}

	return models.NewKindError(kind, "failed to list model").WithCID(cid)
}

func NewService(storage storage, listings listings, logger *slog.Logger) Marketplace {
	return &service{
		storage:  storage,
		listings: listings,
		logger:   logger,
	}
}
