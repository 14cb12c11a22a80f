package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKindErrorMapsValidationToBadRequest(t *testing.T) {
	err := NewKindError(ErrValidation, "invalid price")

	require.Equal(t, BadRequestErrorCode, err.Code)
	require.True(t, errors.Is(err, ErrValidation))
	require.Equal(t, "validation_error", err.KindName())
}

func TestNewKindErrorMapsNetworkKindsToInternal(t *testing.T) {
	for _, kind := range []error{ErrStorageUnavailable, ErrSigning, ErrBroadcastRejected, ErrConfirmationTimeout} {
		err := NewKindError(kind, "failed")
		require.Equal(t, InternalServerErrorCode, err.Code, kind.Error())
		require.True(t, errors.Is(err, kind))
	}
}

func TestWithCIDDoesNotMutateOriginal(t *testing.T) {
	orig := NewKindError(ErrBroadcastRejected, "rejected")
	withCID := orig.WithCID("bafy123")

	require.Empty(t, orig.CID)
	require.Equal(t, "bafy123", withCID.CID)
	require.True(t, errors.Is(withCID, ErrBroadcastRejected))
}

func TestKindNameOfWrappedError(t *testing.T) {
	err := fmt.Errorf("%w: liteserver said no", ErrBroadcastRejected)

	require.Equal(t, "broadcast_rejected", KindName(err))
	require.Empty(t, KindName(errors.New("other")))
}
