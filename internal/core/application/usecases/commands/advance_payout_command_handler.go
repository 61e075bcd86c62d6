package commands

import (
	"context"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/ports"
)

type AdvancePayoutCommandHandler struct {
	uowFactory PayoutUoWFactory
	clock      ports.Clock
}

func NewAdvancePayoutCommandHandler(uowFactory PayoutUoWFactory, clock ports.Clock) AdvancePayoutCommandHandler {
	return AdvancePayoutCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *AdvancePayoutCommandHandler) Handle(ctx context.Context, cmd AdvancePayoutCommand) error {
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

	p, err := uow.PayoutRepository().GetForUpdate(ctx, cmd.PayoutID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	from := p.Status()
	if err = p.Advance(cmd.Status(), cmd.Actor().ID(), now); err != nil {
		return err
	}
	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return err
	}

	if err = recordPayoutAction(ctx, uow, audit.ActionUpdatePayoutStatus, cmd.Actor().ID(), p.ID(), p.DriverID(),
		cmd.Note(), now, map[string]string{"from": from.String(), "to": cmd.Status().String()}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
