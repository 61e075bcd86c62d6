package commands

import (
	"errors"
	"maps"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/pkg/guard"
)

var ErrCreatePayoutCommandIsNotConstructed = errors.New(
	"CreatePayoutCommand must be created via NewCreatePayoutCommand constructor",
)

// CreatePayoutCommand registers a payout an admin prepares for a driver. Amount and
// method limits are enforced by the payout aggregate.
type CreatePayoutCommand struct { //nolint:recvcheck //using for validation
	actor         kernel.Actor
	payoutID      kernel.UUID
	driverID      kernel.UUID
	amount        int64
	method        payout.Method
	recipientInfo map[string]string
	note          string

	guard guard.ConstructorGuard
}

func NewCreatePayoutCommand(
	actor kernel.Actor,
	payoutID, driverID kernel.UUID,
	amount int64,
	method payout.Method,
	recipientInfo map[string]string,
	note string,
) (CreatePayoutCommand, error) {
	if err := errors.Join(payoutID.Validate(), driverID.Validate(), method.Validate()); err != nil {
		return CreatePayoutCommand{}, err
	}
	return CreatePayoutCommand{
		actor:         actor,
		payoutID:      payoutID,
		driverID:      driverID,
		amount:        amount,
		method:        method,
		recipientInfo: maps.Clone(recipientInfo),
		note:          note,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePayoutCommand) Validate() error {
	return c.guard.Validate(ErrCreatePayoutCommandIsNotConstructed)
}

func (c CreatePayoutCommand) Actor() kernel.Actor              { return c.actor }
func (c CreatePayoutCommand) PayoutID() kernel.UUID            { return c.payoutID }
func (c CreatePayoutCommand) DriverID() kernel.UUID            { return c.driverID }
func (c CreatePayoutCommand) Amount() int64                    { return c.amount }
func (c CreatePayoutCommand) Method() payout.Method            { return c.method }
func (c CreatePayoutCommand) RecipientInfo() map[string]string { return maps.Clone(c.recipientInfo) }
func (c CreatePayoutCommand) Note() string                     { return c.note }
