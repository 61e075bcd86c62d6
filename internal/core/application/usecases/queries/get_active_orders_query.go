package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultActiveOrdersLimit = 100
	MaxActiveOrdersLimit     = 500
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists orders that are still moving through the lifecycle
// (matching, accepted or on route), oldest first. Admin only.
//
// Example:
//
//	query, err := NewGetActiveOrdersQuery(actor, 50)
//	orders, err := handler.Handle(ctx, query)
//	for _, o := range orders {
//	    fmt.Printf("%s %s driver=%v\n", o.ID, o.Status, o.DriverID)
//	}
type GetActiveOrdersQuery struct {
	actor kernel.Actor
	limit int

	guard guard.ConstructorGuard
}

// NewGetActiveOrdersQuery uses DefaultActiveOrdersLimit when limit is zero.
func NewGetActiveOrdersQuery(actor kernel.Actor, limit int) (GetActiveOrdersQuery, error) {
	if limit == 0 {
		limit = DefaultActiveOrdersLimit
	}
	if limit < 1 || limit > MaxActiveOrdersLimit {
		return GetActiveOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxActiveOrdersLimit)
	}
	return GetActiveOrdersQuery{actor: actor, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) Actor() kernel.Actor { return q.actor }
func (q GetActiveOrdersQuery) Limit() int          { return q.limit }

// GetActiveOrdersQueryResponse is one row of the active order board.
type GetActiveOrdersQueryResponse struct {
	ID        kernel.UUID
	OwnerID   kernel.UUID
	Price     int64
	Status    order.Status
	DriverID  *kernel.UUID
	Locked    bool
	CreatedAt time.Time
}
