package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// OrderChangeRecord is one outbox row: the serialized before/after pair of a committed
// order write.
type OrderChangeRecord struct {
	Seq       int64
	EventID   string
	OrderID   kernel.UUID
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository reads and acknowledges outbox rows.
type OutboxRepository interface {
	// ListUnpublished returns up to limit rows not yet published, in write order, and
	// locks them so concurrent relays skip them.
	ListUnpublished(ctx context.Context, limit int) ([]OrderChangeRecord, error)

	MarkPublished(ctx context.Context, seqs []int64, at time.Time) error
}

// ChangePublisher forwards outbox rows to the change stream. It returns only after the
// broker acknowledged every record.
type ChangePublisher interface {
	Publish(ctx context.Context, records []OrderChangeRecord) error
}
