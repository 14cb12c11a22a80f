package models

import (
	"errors"
	"net/http"
)

const (
	BadRequestErrorCode     = http.StatusBadRequest
	UnauthorizedErrorCode   = http.StatusUnauthorized
	NotFoundErrorCode       = http.StatusNotFound
	InternalServerErrorCode = http.StatusInternalServerError
	ServiceUnavailableCode  = http.StatusServiceUnavailable
)

// Failure kinds of the upload-and-list flow.
var (
	ErrValidation          = errors.New("validation error")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrSigning             = errors.New("signing error")
	ErrBroadcastRejected   = errors.New("broadcast rejected")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
)

var kindNames = map[error]string{
	ErrValidation:          "validation_error",
	ErrStorageUnavailable:  "storage_unavailable",
	ErrSigning:             "signing_error",
	ErrBroadcastRejected:   "broadcast_rejected",
	ErrConfirmationTimeout: "confirmation_timeout",
}

type AppError struct {
	Code    int
	Message string
	Kind    error

	// CID is set when the failure happened after the file was stored,
	// so the caller can retry the listing without re-uploading.
	CID     string
	QueryID uint64
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func (e *AppError) KindName() string {
	return KindName(e.Kind)
}

// WithCID returns a copy of e carrying the stored content identifier.
func (e *AppError) WithCID(cid string) *AppError {
	c := *e
	c.CID = cid
	return &c
}

func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewKindError builds an AppError whose HTTP code is derived from kind.
func NewKindError(kind error, message string) *AppError {
	code := InternalServerErrorCode
	if errors.Is(kind, ErrValidation) {
		code = BadRequestErrorCode
	}

	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

func KindName(err error) string {
	for kind, name := range kindNames {
		if errors.Is(err, kind) {
			return name
		}
	}

	return ""
}
