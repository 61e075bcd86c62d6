package reactions

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// SettlementHandler settles a completed order and stamps settledAt in the same
// transaction as the ledger movements.
type SettlementHandler struct {
	uowFactory ports.UnitOfWorkFactory
	engine     settlement.FeeEngine
	clock      ports.Clock
	logger     *slog.Logger
}

func NewSettlementHandler(
	uowFactory ports.UnitOfWorkFactory,
	engine settlement.FeeEngine,
	clock ports.Clock,
	logger *slog.Logger,
) *SettlementHandler {
	return &SettlementHandler{
		uowFactory: uowFactory,
		engine:     engine,
		clock:      clock,
		logger:     logger.With("component", "settlement"),
	}
}

func (h *SettlementHandler) Name() string                   { return "settlement" }
func (h *SettlementHandler) Policy() services.FailurePolicy { return services.FailClosed }

func (h *SettlementHandler) Handle(ctx context.Context, change events.OrderChange) error {
	if !change.IsTransition(order.OnRoute, order.Completed) {
		return nil
	}

	return inOrderTx(ctx, h.uowFactory, change.OrderID, func(uow ports.UnitOfWork, o *order.Order) error {
		if o.Status() != order.Completed || o.SettledAt() != nil {
			return nil
		}

		result, err := h.engine.Settle(ctx, uow, o)
		if err != nil {
			return err
		}
		if _, err = o.MarkSettled(h.clock.Now()); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}

		h.logger.InfoContext(ctx, "order settled",
			"order_id", o.ID().String(),
			"price", result.Fees.Price,
			"completion_fee", result.Fees.CompletionFee,
			"driver_earning", result.Fees.DriverEarning,
		)
		return nil
	})
}
