package reactions

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// TripStartFeeHandler charges the trip-start fee when an order goes onRoute. A driver who
// cannot pay is sent back to accepted; once the revert budget is exhausted the order is
// cancelled instead. An order that already moved on (completed or cancelled) is still
// charged, and an unpayable fee is then reported to operators.
type TripStartFeeHandler struct {
	uowFactory ports.UnitOfWorkFactory
	engine     settlement.FeeEngine
	notifier   Notifier
	alerts     ports.AlertPublisher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewTripStartFeeHandler(
	uowFactory ports.UnitOfWorkFactory,
	engine settlement.FeeEngine,
	notifier Notifier,
	alerts ports.AlertPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) *TripStartFeeHandler {
	return &TripStartFeeHandler{
		uowFactory: uowFactory,
		engine:     engine,
		notifier:   notifier,
		alerts:     alerts,
		clock:      clock,
		logger:     logger.With("component", "trip_start_fee"),
	}
}

func (h *TripStartFeeHandler) Name() string                   { return "trip_start_fee" }
func (h *TripStartFeeHandler) Policy() services.FailurePolicy { return services.FailClosed }

func (h *TripStartFeeHandler) Handle(ctx context.Context, change events.OrderChange) error {
	if !change.IsTransition(order.Accepted, order.OnRoute) {
		return nil
	}

	var (
		driverID *kernel.UUID
		decision order.RevertDecision
		reverted bool
		unpaid   *audit.SecurityAlert
	)
	err := inOrderTx(ctx, h.uowFactory, change.OrderID, func(uow ports.UnitOfWork, o *order.Order) error {
		if o.Status() != order.OnRoute {
			var err error
			unpaid, err = h.chargeMovedOn(ctx, uow, o, change)
			return err
		}
		driverID = o.AssignedDriverID()

		charge, err := h.engine.ChargeTripStart(ctx, uow, o)
		if err == nil {
			h.logCharge(ctx, o, charge)
			return nil
		}
		if !cannotPay(err) {
			return err
		}

		decision, err = o.RevertTripStart(h.clock.Now())
		if err != nil {
			return err
		}
		reverted = true
		return uow.OrderRepository().Update(ctx, o)
	})
	if err != nil {
		return err
	}
	if unpaid != nil {
		h.publish(ctx, *unpaid)
		return nil
	}
	if !reverted {
		return nil
	}

	metrics.GuardReverts.WithLabelValues(h.Name()).Inc()
	msg := ports.PushMessage{
		Title: "Insufficient balance",
		Body:  "Top up your wallet to start this trip.",
		Data:  map[string]string{"orderId": change.OrderID.String(), "type": "trip_start_fee_failed"},
	}
	if decision == order.ForceCancel {
		metrics.ForcedCancellations.Inc()
		msg.Body = "The order was cancelled because the trip start fee could not be charged."
		msg.Data["type"] = "order_force_cancelled"
		h.logger.WarnContext(ctx, "order cancelled after repeated fee failures", "order_id", change.OrderID.String())
	} else {
		h.logger.WarnContext(ctx, "trip start reverted, fee not payable", "order_id", change.OrderID.String())
	}

	if h.notifier != nil && driverID != nil {
		dedupID := driverID.String() + "_" + change.OrderID.String() + "_" + msg.Data["type"] + "_" + change.EventID
		if pushErr := h.notifier.Push(ctx, *driverID, dedupID, msg); pushErr != nil {
			h.logger.WarnContext(ctx, "failed to notify driver", "error", pushErr)
		}
	}
	return nil
}

// chargeMovedOn charges the driver who started the trip when the order left onRoute before
// this change was handled. The trip cannot be reverted any more, so a fee the driver
// cannot pay is recorded as an alert. Orders sent back to accepted or force-cancelled by
// an earlier delivery owe nothing.
func (h *TripStartFeeHandler) chargeMovedOn(
	ctx context.Context,
	uow ports.UnitOfWork,
	o *order.Order,
	change events.OrderChange,
) (*audit.SecurityAlert, error) {
	if o.StartedAt() == nil || o.Status() == order.Cancelled {
		return nil, nil
	}
	payer := startingDriver(change, o)
	if payer == nil {
		return nil, nil
	}

	charge, err := h.engine.ChargeTripStartTo(ctx, uow, o, *payer)
	if err == nil {
		h.logCharge(ctx, o, charge)
		return nil, nil
	}
	if !cannotPay(err) {
		return nil, err
	}

	fee := h.engine.Schedule().StartFee(o.Price())
	alert := audit.NewTripStartFeeUnpaid(o.ID(), wallet.DriverWalletID(*payer).String(), fee, o.Status().String(), err, h.clock.Now())
	if addErr := uow.AuditRepository().AddSecurityAlert(ctx, alert); addErr != nil {
		return nil, addErr
	}
	h.logger.ErrorContext(ctx, "trip start fee unpaid after order moved on",
		"order_id", o.ID().String(),
		"driver_id", payer.String(),
		"status", o.Status().String(),
		"fee", fee,
		"error", err,
	)
	return &alert, nil
}

func (h *TripStartFeeHandler) logCharge(ctx context.Context, o *order.Order, charge settlement.Charge) {
	if charge.AlreadyApplied || charge.Fee == 0 {
		return
	}
	h.logger.InfoContext(ctx, "trip start fee charged",
		"order_id", o.ID().String(), "fee", charge.Fee, "balance_after", charge.DriverEntry.BalanceAfter)
}

func (h *TripStartFeeHandler) publish(ctx context.Context, alert audit.SecurityAlert) {
	if h.alerts == nil {
		return
	}
	if err := h.alerts.Publish(ctx, alert); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish security alert", "alert_id", alert.ID.String(), "error", err)
	}
}

// startingDriver is the driver assigned when the trip started, falling back to the lock
// owner and then the current driver.
func startingDriver(change events.OrderChange, o *order.Order) *kernel.UUID {
	if change.After != nil && change.After.AssignedDriverID != nil {
		id := *change.After.AssignedDriverID
		return &id
	}
	if id := o.LockedDriverID(); id != nil {
		return id
	}
	return o.AssignedDriverID()
}

// cannotPay reports whether the driver wallet cannot cover the fee: either the balance is
// too low or the driver never had a wallet.
func cannotPay(err error) bool {
	return errors.Is(err, wallet.ErrInsufficientBalance) || errors.Is(err, errs.ErrObjectNotFound)
}
