// Package pgerr classifies Postgres failures for the repositories.
package pgerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"dispatch/internal/pkg/errs"
)

const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
	UniqueViolation      = "23505"
)

// Wrap marks conflicts that a retry resolves as transient and passes everything else
// through unchanged.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if IsConflict(err) {
		return errs.NewTransientError(err)
	}
	return err
}

// IsConflict reports serialization failures, deadlocks, lock timeouts and unique
// violations.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return errors.Is(err, gorm.ErrDuplicatedKey)
	}
	switch pgErr.Code {
	case SerializationFailure, DeadlockDetected, LockNotAvailable, UniqueViolation:
		return true
	}
	return false
}

// IsUniqueViolation reports a unique index violation, optionally on a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// NotFound converts gorm.ErrRecordNotFound into the domain not-found error.
func NotFound(err error, param string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError(param, id)
	}
	return Wrap(err)
}
