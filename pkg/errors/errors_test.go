package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedInputError(t *testing.T) {
	err := NewMalformedInputError(7, "Date", "tomorrow-ish")

	assert.True(t, stderrors.Is(err, ErrMalformedInput))
	assert.True(t, IsMalformedInput(err))
	assert.Contains(t, err.Error(), "Date")
	assert.Contains(t, err.Error(), "row 7")

	// Wrapped errors keep their identity.
	wrapped := fmt.Errorf("parsing feed: %w", err)
	assert.True(t, IsMalformedInput(wrapped))

	var target *MalformedInputError
	require.True(t, stderrors.As(wrapped, &target))
	assert.Equal(t, 7, target.Row)
}

func TestIdentityMismatchError(t *testing.T) {
	err := &IdentityMismatchError{Index: 3, Target: "123 Main St", Incoming: "456 Oak Ave"}

	assert.True(t, IsIdentityMismatch(err))
	assert.False(t, IsMalformedInput(err))
	assert.Contains(t, err.Error(), "pair 3")
}

func TestSnapshotOrderError(t *testing.T) {
	err := &SnapshotOrderError{Snapshot: "feed", Index: 2}

	assert.True(t, IsSnapshotOrder(err))
	assert.Contains(t, err.Error(), "feed")
}

func TestTransportError(t *testing.T) {
	cause := New("connection refused")
	err := NewTransportError("batch", 503, cause)

	assert.True(t, IsTransportFailure(err))
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.Contains(t, err.Error(), "status 503")

	// Wrapping helper returns nil for nil errors.
	assert.NoError(t, WrapTransport("batch", 0, nil))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("kind", "delete", "unsupported mutation kind")

	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "kind")

	assert.NoError(t, WrapValidation("payload", nil))
	assert.True(t, IsValidationError(WrapValidation("payload", New("empty"))))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMalformedInput,
		ErrIdentityMismatch,
		ErrGeocodeUnavailable,
		ErrTransportFailure,
		ErrSyncInProgress,
		ErrSnapshotOrder,
		ErrInvalidInput,
		ErrTimeout,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, stderrors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
