package errs

import (
	"errors"
	"fmt"
)

// Code is the externally visible error class.
type Code string

const (
	CodeInvalidArgument    Code = "invalid-argument"
	CodeUnauthenticated    Code = "unauthenticated"
	CodePermissionDenied   Code = "permission-denied"
	CodeNotFound           Code = "not-found"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeInternal           Code = "internal"
)

var (
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTransient          = errors.New("transient failure")
)

// FailedPreconditionError reports a state conflict. Reason is safe to show to the caller.
type FailedPreconditionError struct {
	Reason string
	Cause  error
}

func NewFailedPreconditionError(reason string) *FailedPreconditionError {
	return &FailedPreconditionError{Reason: reason}
}

func NewFailedPreconditionErrorWithCause(reason string, cause error) *FailedPreconditionError {
	return &FailedPreconditionError{Reason: reason, Cause: cause}
}

func (e *FailedPreconditionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrFailedPrecondition, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrFailedPrecondition, e.Reason)
}

func (e *FailedPreconditionError) Unwrap() error {
	return ErrFailedPrecondition
}

// UnauthenticatedError reports a call without a verifiable identity.
type UnauthenticatedError struct {
	Reason string
}

func NewUnauthenticatedError(reason string) *UnauthenticatedError {
	return &UnauthenticatedError{Reason: reason}
}

func (e *UnauthenticatedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthenticated, e.Reason)
}

func (e *UnauthenticatedError) Unwrap() error {
	return ErrUnauthenticated
}

// PermissionDeniedError reports an identified caller lacking the required role.
type PermissionDeniedError struct {
	Reason string
}

func NewPermissionDeniedError(reason string) *PermissionDeniedError {
	return &PermissionDeniedError{Reason: reason}
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPermissionDenied, e.Reason)
}

func (e *PermissionDeniedError) Unwrap() error {
	return ErrPermissionDenied
}

// TransientError marks a failure that is expected to clear on its own, such as a
// serialization conflict or a precondition another handler has not satisfied yet.
type TransientError struct {
	Cause error
}

func NewTransientError(cause error) *TransientError {
	return &TransientError{Cause: cause}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransient, e.Cause)
}

func (e *TransientError) Unwrap() []error {
	return []error{ErrTransient, e.Cause}
}

// CodeOf classifies err. A nil error has no code.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange),
		errors.Is(err, ErrValueIsRequired):
		return CodeInvalidArgument
	case errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	case errors.Is(err, ErrTransient):
		return CodeInternal
	case errors.Is(err, ErrFailedPrecondition):
		return CodeFailedPrecondition
	default:
		return CodeInternal
	}
}

// IsRetryable reports whether re-delivering the invocation may succeed.
// Validation and state conflicts are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	return CodeOf(err) == CodeInternal
}

// PublicMessage returns the text that may be shown to an end user.
func PublicMessage(err error) string {
	if CodeOf(err) == CodeInternal {
		return "internal error"
	}
	return err.Error()
}
