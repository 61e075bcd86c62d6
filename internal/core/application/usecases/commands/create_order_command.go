package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a client request for a new order. The order starts in
// matching and waits for a driver.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(actor, kernel.NewUUID(), 1500)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clock)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor   kernel.Actor
	orderID kernel.UUID
	price   int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand checks the order id. Price is validated by the aggregate.
func NewCreateOrderCommand(actor kernel.Actor, orderID kernel.UUID, price int64) (CreateOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		actor:   actor,
		orderID: orderID,
		price:   price,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() kernel.Actor  { return c.actor }
func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreateOrderCommand) Price() int64         { return c.price }
