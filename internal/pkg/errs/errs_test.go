package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("walletId", "platform_main")

		assert.Equal(t, "walletId", err.ParamName)
		assert.Equal(t, "platform_main", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: platform_main", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "42", cause)

		assert.Equal(t,
			"object not found: param is: orderId, ID is: 42 (cause: connection reset)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	err := errs.NewValueIsInvalidErrorWithCause("price", errors.New("must be positive"))

	assert.Equal(t, "value is invalid: price (cause: must be positive)", err.Error())
	assert.Equal(t, "value is invalid: price", errs.NewValueIsInvalidError("price").Error())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("amount", 500, 1000, 100000)

		assert.Equal(t, "value is invalid: 500 is amount, min value is 1000, max value is 100000", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("with cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("amount", -5, 0, 10, errors.New("negative"))

		assert.Equal(t, "value is invalid: -5 is amount, min value is 0, max value is 10 (cause: negative)", err.Error())
	})

	t.Run("newlines are flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("note", "hello\nworld", 0, 10)

		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("driverId")

	assert.Equal(t, "value is required: driverId", err.Error())
	assert.Equal(t, "value is required: driverId (cause: empty)",
		errs.NewValueIsRequiredErrorWithCause("driverId", errors.New("empty")).Error())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Code
	}{
		{"nil", nil, ""},
		{"invalid", errs.NewValueIsInvalidError("x"), errs.CodeInvalidArgument},
		{"out of range", errs.NewValueIsOutOfRangeError("x", 1, 2, 3), errs.CodeInvalidArgument},
		{"required", errs.NewValueIsRequiredError("x"), errs.CodeInvalidArgument},
		{"not found", errs.NewObjectNotFoundError("x", "1"), errs.CodeNotFound},
		{"precondition", errs.NewFailedPreconditionError("payout already rejected"), errs.CodeFailedPrecondition},
		{"unauthenticated", errs.NewUnauthenticatedError("missing token"), errs.CodeUnauthenticated},
		{"permission", errs.NewPermissionDeniedError("admin only"), errs.CodePermissionDenied},
		{"transient", errs.NewTransientError(errs.NewFailedPreconditionError("later")), errs.CodeInternal},
		{"wrapped", fmt.Errorf("complete payout: %w", errs.NewFailedPreconditionError("x")), errs.CodeFailedPrecondition},
		{"unknown", errors.New("boom"), errs.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.CodeOf(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, errs.IsRetryable(nil))
	assert.False(t, errs.IsRetryable(errs.NewValueIsInvalidError("price")))
	assert.False(t, errs.IsRetryable(errs.NewFailedPreconditionError("insufficient balance")))
	assert.True(t, errs.IsRetryable(errors.New("connection refused")))
	assert.True(t, errs.IsRetryable(errs.NewTransientError(errs.NewObjectNotFoundError("entry", "k"))))
}

func TestTransientErrorKeepsCause(t *testing.T) {
	cause := errs.NewFailedPreconditionError("start fee missing")
	err := errs.NewTransientError(cause)

	require.ErrorIs(t, err, errs.ErrTransient)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "transient failure: failed precondition: start fee missing", err.Error())
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "internal error", errs.PublicMessage(errors.New("pq: relation does not exist")))
	assert.Equal(t, "failed precondition: payout is completed",
		errs.PublicMessage(errs.NewFailedPreconditionError("payout is completed")))
}
