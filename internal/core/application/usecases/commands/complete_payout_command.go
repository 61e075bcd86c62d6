package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCompletePayoutCommandIsNotConstructed = errors.New(
		"CompletePayoutCommand must be created via NewCompletePayoutCommand constructor",
	)
	ErrRejectPayoutCommandIsNotConstructed = errors.New(
		"RejectPayoutCommand must be created via NewRejectPayoutCommand constructor",
	)
)

// CompletePayoutCommand marks a payout as paid and debits the driver wallet.
type CompletePayoutCommand struct { //nolint:recvcheck //using for validation
	actor    kernel.Actor
	payoutID kernel.UUID
	note     string

	guard guard.ConstructorGuard
}

func NewCompletePayoutCommand(actor kernel.Actor, payoutID kernel.UUID, note string) (CompletePayoutCommand, error) {
	if err := payoutID.Validate(); err != nil {
		return CompletePayoutCommand{}, err
	}
	return CompletePayoutCommand{actor: actor, payoutID: payoutID, note: note, guard: guard.NewConstructorGuard()}, nil
}

func (c CompletePayoutCommand) Validate() error {
	return c.guard.Validate(ErrCompletePayoutCommandIsNotConstructed)
}

func (c CompletePayoutCommand) Actor() kernel.Actor   { return c.actor }
func (c CompletePayoutCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c CompletePayoutCommand) Note() string          { return c.note }

// RejectPayoutCommand closes a payout without paying and frees the reserved amount.
type RejectPayoutCommand struct { //nolint:recvcheck //using for validation
	actor    kernel.Actor
	payoutID kernel.UUID
	reason   string

	guard guard.ConstructorGuard
}

func NewRejectPayoutCommand(actor kernel.Actor, payoutID kernel.UUID, reason string) (RejectPayoutCommand, error) {
	if err := payoutID.Validate(); err != nil {
		return RejectPayoutCommand{}, err
	}
	return RejectPayoutCommand{actor: actor, payoutID: payoutID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c RejectPayoutCommand) Validate() error {
	return c.guard.Validate(ErrRejectPayoutCommandIsNotConstructed)
}

func (c RejectPayoutCommand) Actor() kernel.Actor   { return c.actor }
func (c RejectPayoutCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c RejectPayoutCommand) Reason() string        { return c.reason }
