package pgerr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/pkg/errs"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		code      errs.Code
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerr.SerializationFailure}, true, errs.CodeInternal},
		{"deadlock", &pgconn.PgError{Code: pgerr.DeadlockDetected}, true, errs.CodeInternal},
		{"unique violation", &pgconn.PgError{Code: pgerr.UniqueViolation}, true, errs.CodeInternal},
		{"check violation", &pgconn.PgError{Code: "23514"}, true, errs.CodeInternal},
		{"gorm duplicate", gorm.ErrDuplicatedKey, true, errs.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pgerr.Wrap(tt.err)
			assert.Equal(t, tt.retryable, errs.IsRetryable(err))
			assert.Equal(t, tt.code, errs.CodeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, pgerr.Wrap(nil))
}

func TestWrap_OnlyConflictsAreMarkedTransient(t *testing.T) {
	assert.ErrorIs(t, pgerr.Wrap(&pgconn.PgError{Code: pgerr.SerializationFailure}), errs.ErrTransient)
	assert.NotErrorIs(t, pgerr.Wrap(&pgconn.PgError{Code: "23514"}), errs.ErrTransient)
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: pgerr.UniqueViolation, ConstraintName: "idx_ledger_wallet_key"}

	assert.True(t, pgerr.IsUniqueViolation(err, ""))
	assert.True(t, pgerr.IsUniqueViolation(err, "idx_ledger_wallet_key"))
	assert.False(t, pgerr.IsUniqueViolation(err, "other"))
	assert.False(t, pgerr.IsUniqueViolation(errors.New("boom"), ""))
}

func TestNotFound(t *testing.T) {
	err := pgerr.NotFound(gorm.ErrRecordNotFound, "orderId", "42")
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}
