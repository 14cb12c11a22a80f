package contracts

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"

	tonclient "ai-marketplace-backend/pkg/clients/ton"
	"ai-marketplace-backend/pkg/models"
	v1 "ai-marketplace-backend/pkg/models/api/v1"
)

const (
	scanPageSize        = 16
	defaultPollInterval = 3 * time.Second

	// Contract transactions older than the send time minus sendClockSkew can
	// not carry our call.
	sendClockSkew = time.Minute
	// lookupWindow bounds LookupListing when the caller gives no lower bound.
	lookupWindow = 24 * time.Hour
)

type chain interface {
	WalletAddress() *address.Address
	Send(ctx context.Context, msg *wallet.Message) (tonclient.SentMessage, error)
	ContractTransactions(ctx context.Context, addr *address.Address, limit uint32, from *tonclient.Cursor) ([]tonclient.Transaction, *tonclient.Cursor, error)
}

type Config struct {
	ContractAddress     *address.Address
	ContractName        string
	AttachAmount        tlb.Coins
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
}

type service struct {
	chain    chain
	cfg      Config
	listOp   uint32
	eventOp  uint32
	newQuery func() uint64
	logger   *slog.Logger
}

type Contracts interface {
	ListModel(ctx context.Context, price uint64, paymentToken *address.Address) (listing v1.Listing, err error)
	LookupListing(ctx context.Context, queryID uint64, since time.Time) (status v1.ListingStatus, err error)
}

// ListModel sends a list-model call and blocks until the contract emits the
// listing-created event for it or the confirmation timeout expires.
func (s *service) ListModel(ctx context.Context, price uint64, paymentToken *address.Address) (listing v1.Listing, err error) {
	log := s.logger.With(
		slog.String("method", "ListModel"),
		slog.Uint64("price", price),
	)

	if price == 0 {
		err = models.NewKindError(models.ErrValidation, "price must be a positive integer")
		return
	}

	since := time.Now().Add(-sendClockSkew)
	tx := s.buildListingTransaction(s.newQuery(), price, paymentToken)
	log = log.With(slog.Uint64("query_id", tx.QueryID))

	body, err := tx.Body()
	if err != nil {
		log.Error("failed to encode listing transaction", slog.String("error", err.Error()))
		err = &models.AppError{
			Code:    models.InternalServerErrorCode,
			Message: "failed to build listing transaction",
			Kind:    models.ErrSigning,
			QueryID: tx.QueryID,
		}
		return
	}

	sent, err := s.chain.Send(ctx, wallet.SimpleMessage(tx.ContractAddress, s.cfg.AttachAmount, body))
	if err != nil {
		log.Error("failed to send listing transaction", slog.String("error", err.Error()))
		err = sendError(err, tx.QueryID)
		return
	}

	listing = v1.Listing{
		QueryID:     tx.QueryID,
		MessageHash: hex.EncodeToString(sent.Hash),
	}

	log.Info("listing transaction sent", slog.String("message_hash", listing.MessageHash))

	listing.ID, err = s.waitForListing(ctx, tx.QueryID, since)
	if err != nil {
		log.Error("listing not confirmed", slog.String("error", err.Error()))
		return v1.Listing{}, err
	}

	log.Info("model listed", slog.Uint64("listing_id", listing.ID))

	return
}

// LookupListing checks the contract transactions made after since once,
// without waiting. A zero since looks back lookupWindow.
func (s *service) LookupListing(ctx context.Context, queryID uint64, since time.Time) (status v1.ListingStatus, err error) {
	if since.IsZero() {
		since = time.Now().Add(-lookupWindow)
	}

	log := s.logger.With(
		slog.String("method", "LookupListing"),
		slog.Uint64("query_id", queryID),
		slog.Time("since", since),
	)

	status, err = s.scan(ctx, queryID, since)
	if err != nil {
		log.Error("failed to scan contract transactions", slog.String("error", err.Error()))
		err = models.NewAppError(models.ServiceUnavailableCode, "failed to read contract transactions")
		return
	}

	return
}

func (s *service) buildListingTransaction(queryID, price uint64, paymentToken *address.Address) ListingTransaction {
	return ListingTransaction{
		ContractAddress: s.cfg.ContractAddress,
		ContractName:    s.cfg.ContractName,
		Function:        functionListModel,
		Sender:          s.chain.WalletAddress(),
		QueryID:         queryID,
		FunctionArgs:    listModelArgs(price, paymentToken),
	}
}

func (s *service) waitForListing(ctx context.Context, queryID uint64, since time.Time) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.scan(ctx, queryID, since)
		if err != nil {
			// read failures are transient until the deadline
			s.logger.Warn("failed to scan contract transactions",
				slog.Uint64("query_id", queryID),
				slog.String("error", err.Error()))
		} else {
			switch status.Status {
			case v1.ListingStatusListed:
				return status.TokenID, nil
			case v1.ListingStatusRejected:
				return 0, &models.AppError{
					Code:    models.InternalServerErrorCode,
					Message: "listing transaction was rejected by the contract",
					Kind:    models.ErrBroadcastRejected,
					QueryID: queryID,
				}
			}
		}

		select {
		case <-ctx.Done():
			return 0, &models.AppError{
				Code:    models.InternalServerErrorCode,
				Message: "listing transaction was not confirmed in time",
				Kind:    models.ErrConfirmationTimeout,
				QueryID: queryID,
			}
		case <-ticker.C:
		}
	}
}

// scan pages back through the contract transactions, newest first, until it
// finds the call with queryID or reaches transactions older than since.
func (s *service) scan(ctx context.Context, queryID uint64, since time.Time) (status v1.ListingStatus, err error) {
	status = v1.ListingStatus{
		QueryID: queryID,
		Status:  v1.ListingStatusPending,
	}

	sender := s.chain.WalletAddress().StringRaw()

	var cursor *tonclient.Cursor
	for {
		var txs []tonclient.Transaction
		txs, cursor, err = s.chain.ContractTransactions(ctx, s.cfg.ContractAddress, scanPageSize, cursor)
		if err != nil {
			return
		}

		for _, tx := range txs {
			if tx.CreatedAt.Before(since) {
				return
			}

			if tx.From == nil || tx.Bounced || tx.From.StringRaw() != sender {
				continue
			}

			op, qid, pErr := parseCallHeader(tx.Body)
			if pErr != nil || op != s.listOp || qid != queryID {
				continue
			}

			status.Status = v1.ListingStatusRejected
			for _, ev := range tx.Events {
				evQuery, listingID, eErr := parseListingEvent(ev, s.eventOp)
				if eErr != nil || evQuery != queryID {
					continue
				}

				status.Status = v1.ListingStatusListed
				status.TokenID = listingID
				return
			}

			return
		}

		if cursor == nil {
			return
		}

		if err = ctx.Err(); err != nil {
			return
		}
	}
}

func sendError(err error, queryID uint64) *models.AppError {
	if errors.Is(err, models.ErrSigning) {
		return &models.AppError{
			Code:    models.InternalServerErrorCode,
			Message: "failed to sign listing transaction",
			Kind:    models.ErrSigning,
			QueryID: queryID,
		}
	}

	return &models.AppError{
		Code:    models.InternalServerErrorCode,
		Message: "listing transaction was rejected: " + err.Error(),
		Kind:    models.ErrBroadcastRejected,
		QueryID: queryID,
	}
}

func NewService(chain chain, cfg Config, logger *slog.Logger) Contracts {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &service{
		chain:    chain,
		cfg:      cfg,
		listOp:   callOp(cfg.ContractName, functionListModel),
		eventOp:  callOp(cfg.ContractName, eventListingCreated),
		newQuery: rand.Uint64,
		logger:   logger,
	}
}
