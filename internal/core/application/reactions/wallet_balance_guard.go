package reactions

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// Notifier delivers a deduplicated push to one user.
type Notifier interface {
	Push(ctx context.Context, userID kernel.UUID, dedupID string, msg ports.PushMessage) error
}

// WalletBalanceGuard reverts an acceptance by a driver whose wallet balance is not
// positive. The check is fail-closed: if the balance cannot be read the handler fails and
// the change is redelivered.
type WalletBalanceGuard struct {
	uowFactory ports.UnitOfWorkFactory
	notifier   Notifier
	clock      ports.Clock
	logger     *slog.Logger
}

func NewWalletBalanceGuard(
	uowFactory ports.UnitOfWorkFactory,
	notifier Notifier,
	clock ports.Clock,
	logger *slog.Logger,
) *WalletBalanceGuard {
	return &WalletBalanceGuard{
		uowFactory: uowFactory,
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With("component", "wallet_balance_guard"),
	}
}

func (g *WalletBalanceGuard) Name() string                   { return "wallet_balance_guard" }
func (g *WalletBalanceGuard) Policy() services.FailurePolicy { return services.FailClosed }

func (g *WalletBalanceGuard) Handle(ctx context.Context, change events.OrderChange) error {
	if !change.IsTransition(order.Matching, order.Accepted) || change.After.AssignedDriverID == nil {
		return nil
	}
	driverID := *change.After.AssignedDriverID

	reverted := false
	err := inOrderTx(ctx, g.uowFactory, change.OrderID, func(uow ports.UnitOfWork, o *order.Order) error {
		if o.Status() != order.Accepted || !kernel.SameUUID(o.AssignedDriverID(), &driverID) {
			return nil
		}
		if marker := o.BalanceGuard(); marker != nil && marker.Passed && marker.AppliesTo(driverID) {
			return nil
		}

		balance, err := g.balance(ctx, uow, driverID)
		if err = g.Policy().Resolve(err); err != nil {
			return err
		}

		now := g.clock.Now()
		if balance > 0 {
			o.PassBalanceGuard(driverID, now)
			return uow.OrderRepository().Update(ctx, o)
		}

		if err = o.RevertAcceptance(now); err != nil {
			return err
		}
		reverted = true
		return uow.OrderRepository().Update(ctx, o)
	})
	if err != nil || !reverted {
		return err
	}

	metrics.GuardReverts.WithLabelValues(g.Name()).Inc()
	g.logger.WarnContext(ctx, "acceptance reverted, driver balance not positive",
		"order_id", change.OrderID.String(), "driver_id", driverID.String())

	if g.notifier != nil {
		pushErr := g.notifier.Push(ctx, driverID, driverID.String()+"_"+change.OrderID.String()+"_insufficient_balance",
			ports.PushMessage{
				Title: "Insufficient balance",
				Body:  "Top up your wallet to accept orders.",
				Data:  map[string]string{"orderId": change.OrderID.String(), "type": "insufficient_balance"},
			})
		if pushErr != nil {
			g.logger.WarnContext(ctx, "failed to notify driver", "error", pushErr)
		}
	}
	return nil
}

func (g *WalletBalanceGuard) balance(ctx context.Context, uow ports.UnitOfWork, driverID kernel.UUID) (int64, error) {
	w, err := uow.WalletRepository().Get(ctx, wallet.DriverWalletID(driverID))
	if errors.Is(err, errs.ErrObjectNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance(), nil
}
