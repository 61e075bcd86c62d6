package commands

import (
	"context"
	"strconv"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/ports"
)

// AdjustWalletCommandHandler applies a manual adjustment through the wallet accessor.
type AdjustWalletCommandHandler struct {
	uowFactory WalletUoWFactory
	accessor   settlement.WalletAccessor
	clock      ports.Clock
}

func NewAdjustWalletCommandHandler(
	uowFactory WalletUoWFactory,
	accessor settlement.WalletAccessor,
	clock ports.Clock,
) AdjustWalletCommandHandler {
	return AdjustWalletCommandHandler{
		uowFactory: uowFactory,
		accessor:   accessor,
		clock:      clock,
	}
}

// Handle returns the ledger entry behind the adjustment. A repeated reference returns the
// original entry with AlreadyApplied set and records no new admin action.
func (h *AdjustWalletCommandHandler) Handle(ctx context.Context, cmd AdjustWalletCommand) (settlement.Result, error) {
	if err := cmd.Validate(); err != nil {
		return settlement.Result{}, err
	}
	if err := cmd.Actor().RequireAdmin(); err != nil {
		return settlement.Result{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return settlement.Result{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	adminID := cmd.Actor().ID()
	res, err := h.accessor.Apply(ctx, uow, settlement.Delta{
		WalletID: cmd.WalletID(),
		Amount:   cmd.Amount(),
		Type:     ledger.Adjustment,
		Key:      cmd.Key(),
		Metadata: map[string]string{"reason": cmd.Reason(), "adminId": adminID.String()},
	})
	if err != nil {
		return settlement.Result{}, err
	}
	if res.AlreadyApplied {
		return res, uow.Commit(ctx)
	}

	target := audit.Target{WalletID: cmd.WalletID().String()}
	if driverID, ok := cmd.WalletID().OwnerID(); ok {
		target.DriverID = &driverID
	}
	action, err := audit.NewAdminAction(audit.ActionAdjustWallet, adminID, target, cmd.Reason(), h.clock.Now())
	if err != nil {
		return settlement.Result{}, err
	}
	action = action.WithDetails(map[string]string{
		"amount":  strconv.FormatInt(cmd.Amount(), 10),
		"entryId": res.EntryID.String(),
	})
	if err = uow.AuditRepository().AddAdminAction(ctx, action); err != nil {
		return settlement.Result{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return settlement.Result{}, err
	}
	return res, nil
}
