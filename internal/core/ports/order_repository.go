package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Every write also appends a before/after pair to the order change outbox in the same
// transaction, so change handlers observe each committed write at least once.
type OrderRepository interface {
	// Add persists a new order. The outbox pair has no before state.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes using optimistic concurrency on the version the order was
	// loaded with. A concurrent write surfaces as a transient error so callers retry.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking it.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and holds its row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListStaleMatching returns ids of matching orders without a driver created before
	// cutoff, oldest first, at most limit.
	ListStaleMatching(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)
}
