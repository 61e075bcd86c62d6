package events

import (
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// OrderChange is the before/after pair of one committed order write. Before is nil when
// the order was created.
type OrderChange struct {
	EventID    string          `json:"eventId"`
	OrderID    kernel.UUID     `json:"orderId"`
	Before     *order.Snapshot `json:"before,omitempty"`
	After      *order.Snapshot `json:"after"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// NewOrderChange builds the change for a write that produced after. The event id is
// derived from the order id and the written version, so re-emitting the same write
// yields the same id.
func NewOrderChange(before *order.Snapshot, after order.Snapshot) OrderChange {
	var b *order.Snapshot
	if before != nil {
		c := before.Clone()
		b = &c
	}
	a := after.Clone()
	return OrderChange{
		EventID:    EventID(after.ID, after.Version),
		OrderID:    after.ID,
		Before:     b,
		After:      &a,
		OccurredAt: after.UpdatedAt,
	}
}

// EventID is the identifier of the change that wrote version of orderID.
func EventID(orderID kernel.UUID, version int64) string {
	return fmt.Sprintf("%s:%d", orderID, version)
}

// IsTransition reports whether the change moved the order from one status to another.
func (c OrderChange) IsTransition(from, to order.Status) bool {
	return c.Before != nil && c.After != nil && c.Before.Status == from && c.After.Status == to
}

// StatusChanged reports whether the write changed the status.
func (c OrderChange) StatusChanged() bool {
	if c.After == nil {
		return false
	}
	return c.Before == nil || c.Before.Status != c.After.Status
}

// Encode serializes the change for the outbox and the change stream.
func (c OrderChange) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// DecodeOrderChange parses an encoded change. A payload without an after state is invalid.
func DecodeOrderChange(data []byte) (OrderChange, error) {
	var c OrderChange
	if err := json.Unmarshal(data, &c); err != nil {
		return OrderChange{}, errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	if c.After == nil || c.EventID == "" {
		return OrderChange{}, errs.NewValueIsRequiredError("after")
	}
	return c, nil
}
