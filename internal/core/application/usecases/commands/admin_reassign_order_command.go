package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAdminReassignOrderCommandIsNotConstructed = errors.New(
	"AdminReassignOrderCommand must be created via NewAdminReassignOrderCommand constructor",
)

// AdminReassignOrderCommand hands an accepted or running order to another driver. It is
// the only sanctioned way to change the driver of a locked order.
type AdminReassignOrderCommand struct { //nolint:recvcheck //using for validation
	actor    kernel.Actor
	orderID  kernel.UUID
	driverID kernel.UUID
	note     string

	guard guard.ConstructorGuard
}

func NewAdminReassignOrderCommand(
	actor kernel.Actor,
	orderID, driverID kernel.UUID,
	note string,
) (AdminReassignOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), driverID.Validate()); err != nil {
		return AdminReassignOrderCommand{}, err
	}
	return AdminReassignOrderCommand{
		actor:    actor,
		orderID:  orderID,
		driverID: driverID,
		note:     note,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdminReassignOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdminReassignOrderCommandIsNotConstructed)
}

func (c AdminReassignOrderCommand) Actor() kernel.Actor   { return c.actor }
func (c AdminReassignOrderCommand) OrderID() kernel.UUID  { return c.orderID }
func (c AdminReassignOrderCommand) DriverID() kernel.UUID { return c.driverID }
func (c AdminReassignOrderCommand) Note() string          { return c.note }
