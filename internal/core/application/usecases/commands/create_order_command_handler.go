package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler persists a new matching order owned by the caller.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle creates the order inside a transaction so the repository also records the
// initial change for the outbox.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Actor().RequireAuthenticated(); err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Actor().ID(), cmd.Price(), h.clock.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
