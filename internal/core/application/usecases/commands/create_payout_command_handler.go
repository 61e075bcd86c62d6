package commands

import (
	"context"
	"strconv"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
)

// CreatePayoutCommandHandler stores a requested payout and reserves its amount on the
// driver wallet so the same money cannot be paid out twice.
type CreatePayoutCommandHandler struct {
	uowFactory PayoutUoWFactory
	accessor   settlement.WalletAccessor
	clock      ports.Clock
}

func NewCreatePayoutCommandHandler(
	uowFactory PayoutUoWFactory,
	accessor settlement.WalletAccessor,
	clock ports.Clock,
) CreatePayoutCommandHandler {
	return CreatePayoutCommandHandler{
		uowFactory: uowFactory,
		accessor:   accessor,
		clock:      clock,
	}
}

func (h *CreatePayoutCommandHandler) Handle(ctx context.Context, cmd CreatePayoutCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.Actor().RequireAdmin(); err != nil {
		return err
	}

	now := h.clock.Now()
	p, err := payout.NewPayout(
		cmd.PayoutID(), cmd.DriverID(), cmd.Amount(), cmd.Method(),
		cmd.RecipientInfo(), cmd.Note(), cmd.Actor().ID(), now,
	)
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

	walletID := wallet.DriverWalletID(cmd.DriverID())
	if err = h.accessor.Reserve(ctx, uow, walletID, cmd.Amount()); err != nil {
		return err
	}
	if err = uow.PayoutRepository().Add(ctx, p); err != nil {
		return err
	}

	driverID, payoutID := cmd.DriverID(), cmd.PayoutID()
	action, err := audit.NewAdminAction(audit.ActionCreatePayout, cmd.Actor().ID(), audit.Target{
		DriverID: &driverID,
		PayoutID: &payoutID,
		WalletID: walletID.String(),
	}, cmd.Note(), now)
	if err != nil {
		return err
	}
	action = action.WithDetails(map[string]string{
		"amount": strconv.FormatInt(cmd.Amount(), 10),
		"method": cmd.Method().String(),
	})
	if err = uow.AuditRepository().AddAdminAction(ctx, action); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
