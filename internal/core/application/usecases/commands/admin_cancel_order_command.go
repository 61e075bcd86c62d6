package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAdminCancelOrderCommandIsNotConstructed = errors.New(
	"AdminCancelOrderCommand must be created via NewAdminCancelOrderCommand constructor",
)

type AdminCancelOrderCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewAdminCancelOrderCommand(actor kernel.Actor, orderID kernel.UUID, reason string) (AdminCancelOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AdminCancelOrderCommand{}, err
	}
	return AdminCancelOrderCommand{
		actor:   actor,
		orderID: orderID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AdminCancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdminCancelOrderCommandIsNotConstructed)
}

func (c AdminCancelOrderCommand) Actor() kernel.Actor  { return c.actor }
func (c AdminCancelOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c AdminCancelOrderCommand) Reason() string       { return c.reason }
