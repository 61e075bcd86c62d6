package reactions

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// OrderNotifier tells clients and drivers about order transitions. It is fail-open: a
// failed push never blocks or retries the order flow.
type OrderNotifier struct {
	plan     services.NotificationPlan
	notifier Notifier
	logger   *slog.Logger
}

func NewOrderNotifier(notifier Notifier, logger *slog.Logger) *OrderNotifier {
	return &OrderNotifier{notifier: notifier, logger: logger.With("component", "order_notifier")}
}

func (n *OrderNotifier) Name() string                   { return "order_notifier" }
func (n *OrderNotifier) Policy() services.FailurePolicy { return services.FailOpen }

func (n *OrderNotifier) Handle(ctx context.Context, change events.OrderChange) error {
	var errList []error
	for _, note := range n.plan.Plan(change.Before, change.After) {
		err := n.notifier.Push(ctx, note.UserID, note.DedupID(change.OrderID), ports.PushMessage{
			Title: note.Title,
			Body:  note.Body,
			Data: map[string]string{
				"orderId": change.OrderID.String(),
				"type":    note.Type,
				"status":  change.After.Status.String(),
			},
		})
		if err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
