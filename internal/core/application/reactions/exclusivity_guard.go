package reactions

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/metrics"
)

// ExclusivityGuard restores the rightful driver of a locked order when its driver was
// changed without an admin reassignment, and raises a security alert.
type ExclusivityGuard struct {
	uowFactory ports.UnitOfWorkFactory
	policy     services.ExclusivityPolicy
	alerts     ports.AlertPublisher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewExclusivityGuard(
	uowFactory ports.UnitOfWorkFactory,
	policy services.ExclusivityPolicy,
	alerts ports.AlertPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) *ExclusivityGuard {
	return &ExclusivityGuard{
		uowFactory: uowFactory,
		policy:     policy,
		alerts:     alerts,
		clock:      clock,
		logger:     logger.With("component", "exclusivity_guard"),
	}
}

func (g *ExclusivityGuard) Name() string                   { return "exclusivity_guard" }
func (g *ExclusivityGuard) Policy() services.FailurePolicy { return services.FailClosed }

func (g *ExclusivityGuard) Handle(ctx context.Context, change events.OrderChange) error {
	if !g.policy.NeedsReview(change.Before, change.After) {
		return nil
	}
	attempted := change.After.AssignedDriverID

	var (
		alert    *audit.SecurityAlert
		restored kernel.UUID
	)
	err := inOrderTx(ctx, g.uowFactory, change.OrderID, func(uow ports.UnitOfWork, o *order.Order) error {
		// Already reverted, or overwritten by a later write that gets its own review.
		if !kernel.SameUUID(o.AssignedDriverID(), attempted) {
			return nil
		}
		// The lock owner only moves through Reassign, so it survives a chain of raw
		// overwrites where Before may hold an earlier intruder.
		restored = *change.Before.AssignedDriverID
		if owner := o.LockedDriverID(); owner != nil && !kernel.SameUUID(owner, attempted) {
			restored = *owner
		}

		since := change.OccurredAt.Add(-g.policy.AdminWindow())
		grants, err := g.grants(ctx, uow, change.OrderID, since)
		if err != nil {
			return err
		}
		if g.policy.Evaluate(change.Before, change.After, grants, change.OccurredAt) != services.Unauthorized {
			return nil
		}

		now := g.clock.Now()
		o.RestoreDriver(restored, now)
		a := audit.NewUnauthorizedReassignment(change.OrderID, attempted, restored, now)
		if err = uow.AuditRepository().AddSecurityAlert(ctx, a); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return err
		}
		alert = &a
		return nil
	})
	if err != nil || alert == nil {
		return err
	}

	metrics.ExclusivityViolations.Inc()
	metrics.GuardReverts.WithLabelValues(g.Name()).Inc()
	g.logger.WarnContext(ctx, "unauthorized driver change reverted",
		"order_id", change.OrderID.String(),
		"restored_driver_id", restored.String(),
		"alert_id", alert.ID.String(),
	)
	if g.alerts != nil {
		if pubErr := g.alerts.Publish(ctx, *alert); pubErr != nil {
			g.logger.ErrorContext(ctx, "failed to publish security alert", "alert_id", alert.ID.String(), "error", pubErr)
		}
	}
	return nil
}

func (g *ExclusivityGuard) grants(ctx context.Context, uow ports.UnitOfWork, orderID kernel.UUID, since time.Time) ([]audit.Grant, error) {
	actions, err := uow.AuditRepository().ListReassignments(ctx, orderID, since)
	if err != nil {
		return nil, err
	}
	alerts, err := uow.AuditRepository().ListSecurityAlerts(ctx, orderID, since)
	if err != nil {
		return nil, err
	}

	grants := make([]audit.Grant, 0, len(actions)+len(alerts))
	for _, a := range actions {
		if grant, ok := a.Grant(); ok {
			grants = append(grants, grant)
		}
	}
	for _, a := range alerts {
		if grant, ok := a.Grant(); ok {
			grants = append(grants, grant)
		}
	}
	return grants, nil
}
