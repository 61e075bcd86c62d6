package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// OrderAction is a lifecycle move requested by a participant of the order.
type OrderAction string

const (
	ActionAccept         OrderAction = "accept"
	ActionStart          OrderAction = "start"
	ActionComplete       OrderAction = "complete"
	ActionCancelByClient OrderAction = "cancel_by_client"
	ActionCancelByDriver OrderAction = "cancel_by_driver"
)

func (a OrderAction) Validate() error {
	switch a {
	case ActionAccept, ActionStart, ActionComplete, ActionCancelByClient, ActionCancelByDriver:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown action %q", string(a)))
}

// TransitionOrderCommand moves an order along its lifecycle on behalf of the client or
// the driver. Accept assigns the calling driver.
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	action  OrderAction
	reason  string

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	action OrderAction,
	reason string,
) (TransitionOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), action.Validate()); err != nil {
		return TransitionOrderCommand{}, err
	}

	return TransitionOrderCommand{
		actor:   actor,
		orderID: orderID,
		action:  action,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) Actor() kernel.Actor  { return c.actor }
func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderCommand) Action() OrderAction  { return c.action }
func (c TransitionOrderCommand) Reason() string       { return c.reason }
