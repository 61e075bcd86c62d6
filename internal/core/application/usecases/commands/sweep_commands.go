package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultMatchTimeout   = 10 * time.Minute
	DefaultLocationMaxAge = time.Hour
	DefaultSweepBatchSize = 500
	DefaultRelayBatchSize = 100
)

var (
	ErrExpireStaleOrdersCommandIsNotConstructed = errors.New(
		"ExpireStaleOrdersCommand must be created via NewExpireStaleOrdersCommand constructor",
	)
	ErrCleanStaleDriverLocationsCommandIsNotConstructed = errors.New(
		"CleanStaleDriverLocationsCommand must be created via NewCleanStaleDriverLocationsCommand constructor",
	)
	ErrRelayOrderChangesCommandIsNotConstructed = errors.New(
		"RelayOrderChangesCommand must be created via NewRelayOrderChangesCommand constructor",
	)
)

// ExpireStaleOrdersCommand expires matching orders that found no driver in time.
//
// Example:
//
//	cmd, _ := NewExpireStaleOrdersCommand(10*time.Minute, 500)
//	handler := NewExpireStaleOrdersCommandHandler(uowFactory, clock, logger)
//
//	// Run periodically from the scheduler
//	expired, err := handler.Handle(ctx, cmd)
type ExpireStaleOrdersCommand struct {
	timeout time.Duration
	limit   int

	guard guard.ConstructorGuard
}

func NewExpireStaleOrdersCommand(timeout time.Duration, limit int) (ExpireStaleOrdersCommand, error) {
	if err := validateSweep(timeout, limit); err != nil {
		return ExpireStaleOrdersCommand{}, err
	}
	return ExpireStaleOrdersCommand{timeout: timeout, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireStaleOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireStaleOrdersCommandIsNotConstructed)
}

func (c ExpireStaleOrdersCommand) Timeout() time.Duration { return c.timeout }
func (c ExpireStaleOrdersCommand) Limit() int             { return c.limit }

// CleanStaleDriverLocationsCommand removes driver positions nobody refreshed for maxAge.
type CleanStaleDriverLocationsCommand struct {
	maxAge time.Duration
	limit  int

	guard guard.ConstructorGuard
}

func NewCleanStaleDriverLocationsCommand(maxAge time.Duration, limit int) (CleanStaleDriverLocationsCommand, error) {
	if err := validateSweep(maxAge, limit); err != nil {
		return CleanStaleDriverLocationsCommand{}, err
	}
	return CleanStaleDriverLocationsCommand{maxAge: maxAge, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c CleanStaleDriverLocationsCommand) Validate() error {
	return c.guard.Validate(ErrCleanStaleDriverLocationsCommandIsNotConstructed)
}

func (c CleanStaleDriverLocationsCommand) MaxAge() time.Duration { return c.maxAge }
func (c CleanStaleDriverLocationsCommand) Limit() int            { return c.limit }

// RelayOrderChangesCommand publishes one batch of the order change outbox.
type RelayOrderChangesCommand struct {
	limit int

	guard guard.ConstructorGuard
}

func NewRelayOrderChangesCommand(limit int) (RelayOrderChangesCommand, error) {
	if limit <= 0 {
		return RelayOrderChangesCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, 10_000)
	}
	return RelayOrderChangesCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c RelayOrderChangesCommand) Validate() error {
	return c.guard.Validate(ErrRelayOrderChangesCommandIsNotConstructed)
}

func (c RelayOrderChangesCommand) Limit() int { return c.limit }

func validateSweep(age time.Duration, limit int) error {
	var errList []error
	if age <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("age", errors.New("must be positive")))
	}
	if limit <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", limit, 1, 10_000))
	}
	return errors.Join(errList...)
}
