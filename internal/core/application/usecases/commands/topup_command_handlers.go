package commands

import (
	"context"
	"strconv"
	"time"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/topup"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CreateTopupCommandHandler stores a pending top-up request for the calling driver.
type CreateTopupCommandHandler struct {
	uowFactory TopupUoWFactory
	profiles   ports.ProfileRepository
	clock      ports.Clock
}

func NewCreateTopupCommandHandler(
	uowFactory TopupUoWFactory,
	profiles ports.ProfileRepository,
	clock ports.Clock,
) CreateTopupCommandHandler {
	return CreateTopupCommandHandler{
		uowFactory: uowFactory,
		profiles:   profiles,
		clock:      clock,
	}
}

func (h *CreateTopupCommandHandler) Handle(ctx context.Context, cmd CreateTopupCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Actor().RequireAuthenticated(); err != nil {
		return err
	}

	profile, err := h.profiles.Get(ctx, cmd.Actor().ID())
	if err != nil {
		return err
	}
	if profile.Role != ports.RoleDriver {
		return errs.NewPermissionDeniedError("only drivers can request top-ups")
	}

	r, err := topup.NewRequest(cmd.RequestID(), cmd.Actor().ID(), cmd.Amount(), h.clock.Now())
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

	if err = uow.TopupRepository().Add(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// ApproveTopupCommandHandler approves a request and credits the driver wallet under the
// key topup_{id}. Approving twice credits once.
type ApproveTopupCommandHandler struct {
	uowFactory TopupUoWFactory
	accessor   settlement.WalletAccessor
	clock      ports.Clock
}

func NewApproveTopupCommandHandler(
	uowFactory TopupUoWFactory,
	accessor settlement.WalletAccessor,
	clock ports.Clock,
) ApproveTopupCommandHandler {
	return ApproveTopupCommandHandler{
		uowFactory: uowFactory,
		accessor:   accessor,
		clock:      clock,
	}
}

func (h *ApproveTopupCommandHandler) Handle(ctx context.Context, cmd ApproveTopupCommand) error {
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

	r, err := uow.TopupRepository().GetForUpdate(ctx, cmd.RequestID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	changed, err := r.Approve(cmd.Actor().ID(), now)
	if err != nil || !changed {
		return err
	}

	requestID := r.ID()
	res, err := h.accessor.Apply(ctx, uow, settlement.Delta{
		WalletID: wallet.DriverWalletID(r.DriverID()),
		Amount:   r.Amount(),
		Type:     ledger.Topup,
		Key:      ledger.TopupKey(requestID),
		TopupID:  &requestID,
		Metadata: map[string]string{"adminId": cmd.Actor().ID().String()},
	})
	if err != nil {
		return err
	}
	if err = uow.TopupRepository().Update(ctx, r); err != nil {
		return err
	}

	if err = recordTopupAction(ctx, uow, audit.ActionApproveTopup, cmd.Actor().ID(), r, "", now, map[string]string{
		"amount":  strconv.FormatInt(r.Amount(), 10),
		"entryId": res.EntryID.String(),
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// RejectTopupCommandHandler rejects a pending request. A processed request cannot be
// rejected.
type RejectTopupCommandHandler struct {
	uowFactory TopupUoWFactory
	clock      ports.Clock
}

func NewRejectTopupCommandHandler(uowFactory TopupUoWFactory, clock ports.Clock) RejectTopupCommandHandler {
	return RejectTopupCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *RejectTopupCommandHandler) Handle(ctx context.Context, cmd RejectTopupCommand) error {
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

	r, err := uow.TopupRepository().GetForUpdate(ctx, cmd.RequestID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = r.Reject(cmd.Actor().ID(), cmd.Notes(), now); err != nil {
		return err
	}
	if err = uow.TopupRepository().Update(ctx, r); err != nil {
		return err
	}

	if err = recordTopupAction(ctx, uow, audit.ActionRejectTopup, cmd.Actor().ID(), r, cmd.Notes(), now, nil); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func recordTopupAction(
	ctx context.Context,
	uow AuditRepoFactory,
	kind audit.ActionKind,
	adminID kernel.UUID,
	r *topup.Request,
	note string,
	now time.Time,
	details map[string]string,
) error {
	driverID, requestID := r.DriverID(), r.ID()
	action, err := audit.NewAdminAction(kind, adminID, audit.Target{
		DriverID: &driverID,
		TopupID:  &requestID,
		WalletID: wallet.DriverWalletID(driverID).String(),
	}, note, now)
	if err != nil {
		return err
	}
	if details != nil {
		action = action.WithDetails(details)
	}
	return uow.AuditRepository().AddAdminAction(ctx, action)
}
