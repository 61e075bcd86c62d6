package commands

import (
	"context"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AdminReassignOrderCommandHandler writes the reassignment and its admin action in one
// transaction, so the exclusivity guard always finds the authorization when it reviews
// the change.
type AdminReassignOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	profiles   ports.ProfileRepository
	clock      ports.Clock
}

func NewAdminReassignOrderCommandHandler(
	uowFactory OrderUoWFactory,
	profiles ports.ProfileRepository,
	clock ports.Clock,
) AdminReassignOrderCommandHandler {
	return AdminReassignOrderCommandHandler{
		uowFactory: uowFactory,
		profiles:   profiles,
		clock:      clock,
	}
}

func (h *AdminReassignOrderCommandHandler) Handle(ctx context.Context, cmd AdminReassignOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Actor().RequireAdmin(); err != nil {
		return err
	}

	profile, err := h.profiles.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if profile.Role != ports.RoleDriver {
		return errs.NewFailedPreconditionError("target user is not a driver")
	}
	if profile.IsBlocked {
		return errs.NewFailedPreconditionError("target driver is blocked")
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
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
	if err = o.Reassign(cmd.DriverID(), now); err != nil {
		return err
	}

	orderID, driverID := o.ID(), cmd.DriverID()
	action, err := audit.NewAdminAction(audit.ActionReassignOrder, cmd.Actor().ID(), audit.Target{
		OrderID:          &orderID,
		DriverID:         &driverID,
		PreviousDriverID: previous,
	}, cmd.Note(), now)
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
