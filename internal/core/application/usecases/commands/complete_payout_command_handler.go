package commands

import (
	"context"
	"strconv"
	"time"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
)

// CompletePayoutCommandHandler debits the payout from the driver wallet under the key
// payout_{id}, releases the reservation and resolves the payout in one transaction.
// Completing an already completed payout succeeds without moving money.
type CompletePayoutCommandHandler struct {
	uowFactory PayoutUoWFactory
	accessor   settlement.WalletAccessor
	clock      ports.Clock
}

func NewCompletePayoutCommandHandler(
	uowFactory PayoutUoWFactory,
	accessor settlement.WalletAccessor,
	clock ports.Clock,
) CompletePayoutCommandHandler {
	return CompletePayoutCommandHandler{
		uowFactory: uowFactory,
		accessor:   accessor,
		clock:      clock,
	}
}

func (h *CompletePayoutCommandHandler) Handle(ctx context.Context, cmd CompletePayoutCommand) error {
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
	switch p.Status() {
	case payout.StatusCompleted:
		return nil
	case payout.StatusRejected:
		return payout.ErrAlreadyRejected
	}

	payoutID := p.ID()
	walletID := wallet.DriverWalletID(p.DriverID())
	res, err := h.accessor.Apply(ctx, uow, settlement.Delta{
		WalletID: walletID,
		Amount:   -p.Amount(),
		Type:     ledger.Payout,
		Key:      ledger.PayoutKey(payoutID),
		PayoutID: &payoutID,
		Metadata: map[string]string{"method": p.Method().String()},
	})
	if err != nil {
		return err
	}
	if err = h.accessor.ReleaseReservation(ctx, uow, walletID, p.Amount()); err != nil {
		return err
	}

	now := h.clock.Now()
	if _, err = p.Complete(cmd.Actor().ID(), res.EntryID, now); err != nil {
		return err
	}
	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return err
	}

	if err = recordPayoutAction(ctx, uow, audit.ActionCompletePayout, cmd.Actor().ID(), payoutID, p.DriverID(),
		cmd.Note(), now, map[string]string{
			"amount":  strconv.FormatInt(p.Amount(), 10),
			"entryId": res.EntryID.String(),
		}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// RejectPayoutCommandHandler rejects a payout and releases its reservation. Rejecting an
// already rejected payout succeeds without side effects.
type RejectPayoutCommandHandler struct {
	uowFactory PayoutUoWFactory
	accessor   settlement.WalletAccessor
	clock      ports.Clock
}

func NewRejectPayoutCommandHandler(
	uowFactory PayoutUoWFactory,
	accessor settlement.WalletAccessor,
	clock ports.Clock,
) RejectPayoutCommandHandler {
	return RejectPayoutCommandHandler{
		uowFactory: uowFactory,
		accessor:   accessor,
		clock:      clock,
	}
}

func (h *RejectPayoutCommandHandler) Handle(ctx context.Context, cmd RejectPayoutCommand) error {
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
	changed, err := p.Reject(cmd.Actor().ID(), cmd.Reason(), now)
	if err != nil || !changed {
		return err
	}

	if err = h.accessor.ReleaseReservation(ctx, uow, wallet.DriverWalletID(p.DriverID()), p.Amount()); err != nil {
		return err
	}
	if err = uow.PayoutRepository().Update(ctx, p); err != nil {
		return err
	}

	if err = recordPayoutAction(ctx, uow, audit.ActionRejectPayout, cmd.Actor().ID(), p.ID(), p.DriverID(),
		cmd.Reason(), now, nil); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func recordPayoutAction(
	ctx context.Context,
	uow AuditRepoFactory,
	kind audit.ActionKind,
	adminID, payoutID, driverID kernel.UUID,
	note string,
	now time.Time,
	details map[string]string,
) error {
	action, err := audit.NewAdminAction(kind, adminID, audit.Target{
		DriverID: &driverID,
		PayoutID: &payoutID,
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
