package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// GetActiveOrdersQueryHandler reads the active order board straight from the orders table.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := query.Actor().RequireAdmin(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			owner_id,
			price,
			status,
			assigned_driver_id,
			locked_at IS NOT NULL,
			created_at
		FROM orders
		WHERE status IN (?, ?, ?)
		ORDER BY created_at, id
		LIMIT ?
	`, order.Matching, order.Accepted, order.OnRoute, query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetActiveOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id, ownerID uuid.UUID
			driverID    *uuid.UUID
			status      int
			resp        GetActiveOrdersQueryResponse
			createdAt   time.Time
		)
		if err = rows.Scan(&id, &ownerID, &resp.Price, &status, &driverID, &resp.Locked, &createdAt); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.OwnerID, err = kernel.UUIDFromBytes(ownerID[:]); err != nil {
			return nil, err
		}
		if driverID != nil {
			d, idErr := kernel.UUIDFromBytes(driverID[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.DriverID = &d
		}
		resp.Status = order.Status(status)
		resp.CreatedAt = createdAt.UTC()
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
