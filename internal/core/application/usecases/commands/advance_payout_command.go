package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/pkg/guard"
)

var ErrAdvancePayoutCommandIsNotConstructed = errors.New(
	"AdvancePayoutCommand must be created via NewAdvancePayoutCommand constructor",
)

// AdvancePayoutCommand moves a payout to approved or processing. Terminal states have
// their own commands.
type AdvancePayoutCommand struct { //nolint:recvcheck //using for validation
	actor    kernel.Actor
	payoutID kernel.UUID
	status   payout.Status
	note     string

	guard guard.ConstructorGuard
}

func NewAdvancePayoutCommand(
	actor kernel.Actor,
	payoutID kernel.UUID,
	status payout.Status,
	note string,
) (AdvancePayoutCommand, error) {
	if err := errors.Join(payoutID.Validate(), status.Validate()); err != nil {
		return AdvancePayoutCommand{}, err
	}
	return AdvancePayoutCommand{
		actor:    actor,
		payoutID: payoutID,
		status:   status,
		note:     note,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdvancePayoutCommand) Validate() error {
	return c.guard.Validate(ErrAdvancePayoutCommandIsNotConstructed)
}

func (c AdvancePayoutCommand) Actor() kernel.Actor   { return c.actor }
func (c AdvancePayoutCommand) PayoutID() kernel.UUID { return c.payoutID }
func (c AdvancePayoutCommand) Status() payout.Status { return c.status }
func (c AdvancePayoutCommand) Note() string          { return c.note }
