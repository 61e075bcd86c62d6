// Package errs provides the error types shared by every layer of the dispatch core.
//
// Two families live here:
//   - validation errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ObjectNotFoundError) raised by constructors, setters and repositories;
//   - classification errors (FailedPreconditionError, UnauthenticatedError,
//     PermissionDeniedError, TransientError) raised by use cases and adapters.
//
// Every error type follows the same shape: a sentinel variable, a struct with the
// details, constructors with and without cause, Error() and Unwrap().
//
// CodeOf maps any error onto the public taxonomy (invalid-argument, unauthenticated,
// permission-denied, not-found, failed-precondition, internal) and IsRetryable tells a
// delivery mechanism whether re-running the invocation can help.
package errs
