package services

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Recipient is who a push notification is for.
type Recipient int

const (
	RecipientClient Recipient = iota
	RecipientDriver
)

// Notification is one push derived from an order change.
type Notification struct {
	Type      string
	Recipient Recipient
	UserID    kernel.UUID
	Title     string
	Body      string
}

// DedupID identifies the notification in the notification log.
func (n Notification) DedupID(orderID kernel.UUID) string {
	return n.UserID.String() + "_" + orderID.String() + "_" + n.Type
}

// NotificationPlan maps order transitions to pushes. Corrective edges and guard reverts
// are announced by the guards themselves and produce nothing here.
type NotificationPlan struct{}

// Plan returns the notifications owed for the change. before is nil on create.
func (NotificationPlan) Plan(before, after *order.Snapshot) []Notification {
	if after == nil {
		return nil
	}
	if before != nil && before.Status == after.Status {
		return nil
	}
	if before != nil && order.IsCorrectiveEdge(before.Status, after.Status) {
		return nil
	}

	var out []Notification
	client := func(typ, title, body string) {
		out = append(out, Notification{Type: typ, Recipient: RecipientClient, UserID: after.OwnerID, Title: title, Body: body})
	}
	driver := func(typ, title, body string, id *kernel.UUID) {
		if id != nil {
			out = append(out, Notification{Type: typ, Recipient: RecipientDriver, UserID: *id, Title: title, Body: body})
		}
	}

	switch after.Status {
	case order.Accepted:
		client("order_accepted", "Driver found", "A driver accepted your order.")
	case order.OnRoute:
		client("order_on_route", "On the way", "Your driver is on the way.")
	case order.Completed:
		client("order_completed", "Delivered", "Your order has been completed.")
	case order.CancelledByDriver:
		client("order_cancelled", "Order cancelled", "The driver cancelled your order.")
	case order.CancelledByClient:
		driver("order_cancelled", "Order cancelled", "The client cancelled the order.", previousDriver(before))
	case order.CancelledByAdmin:
		client("order_cancelled", "Order cancelled", "Your order was cancelled by support.")
		driver("order_cancelled", "Order cancelled", "The order was cancelled by support.", previousDriver(before))
	case order.Cancelled:
		client("order_cancelled", "Order cancelled", "Your order could not be completed.")
	case order.Expired:
		client("order_expired", "No driver found", "Your order expired without a driver.")
	}
	return out
}

func previousDriver(before *order.Snapshot) *kernel.UUID {
	if before == nil {
		return nil
	}
	return before.AssignedDriverID
}
