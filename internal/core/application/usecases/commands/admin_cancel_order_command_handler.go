package commands

import (
	"context"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AdminCancelOrderCommandHandler cancels any non-terminal order as cancelled_by_admin
// and records who did it.
type AdminCancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewAdminCancelOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) AdminCancelOrderCommandHandler {
	return AdminCancelOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *AdminCancelOrderCommandHandler) Handle(ctx context.Context, cmd AdminCancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Actor().RequireAdmin(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	previous := o.AssignedDriverID()

	now := h.clock.Now()
	if err = o.Cancel(order.CancelledByAdmin, cmd.Reason(), now); err != nil {
		return err
	}

	orderID := o.ID()
	action, err := audit.NewAdminAction(audit.ActionCancelOrder, cmd.Actor().ID(), audit.Target{
		OrderID:          &orderID,
		PreviousDriverID: previous,
	}, cmd.Reason(), now)
	if err != nil {
		return err
	}

	if err = uow.AuditRepository().AddAdminAction(ctx, action); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
