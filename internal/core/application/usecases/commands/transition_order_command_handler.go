package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// TransitionOrderCommandHandler applies a participant's lifecycle move. Guards react to
// the resulting change asynchronously; this handler only checks the graph and who may
// make the move.
type TransitionOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewTransitionOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	actor := cmd.Actor()
	if err := actor.RequireAuthenticated(); err != nil {
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

	if err = h.apply(o, actor, cmd); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *TransitionOrderCommandHandler) apply(o *order.Order, actor kernel.Actor, cmd TransitionOrderCommand) error {
	now := h.clock.Now()
	switch cmd.Action() {
	case ActionAccept:
		if actor.Is(o.OwnerID()) {
			return errs.NewPermissionDeniedError("clients cannot accept their own orders")
		}
		return o.Accept(actor.ID(), now)
	case ActionCancelByClient:
		if !actor.Is(o.OwnerID()) {
			return errs.NewPermissionDeniedError("only the client can cancel this order")
		}
		return o.Cancel(order.CancelledByClient, cmd.Reason(), now)
	}

	callerID := actor.ID()
	if !kernel.SameUUID(o.AssignedDriverID(), &callerID) {
		return errs.NewPermissionDeniedError("only the assigned driver can perform this action")
	}
	switch cmd.Action() {
	case ActionStart:
		return o.StartTrip(now)
	case ActionComplete:
		return o.Complete(now)
	default:
		return o.Cancel(order.CancelledByDriver, cmd.Reason(), now)
	}
}
