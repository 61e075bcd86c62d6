package orderrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// changeWriter appends the before/after pair of a write in the same transaction.
type changeWriter interface {
	Append(ctx context.Context, change events.OrderChange) error
}

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	changes changeWriter
}

func NewGormOrderRepository(db *gorm.DB, changes changeWriter) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		changes: changes,
	}
}

// Add inserts a new order at version 1.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	after := aggregate.Snapshot()
	after.Version = 1

	dto := fromSnapshot(after)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Wrap(err)
	}

	if err := r.changes.Append(ctx, events.NewOrderChange(nil, after)); err != nil {
		return err
	}

	aggregate.SyncPersisted(after.Version)
	return nil
}

// Update writes the order only if nobody wrote it since it was loaded.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	before, ok := aggregate.Loaded()
	if !ok {
		return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("%s was never persisted", aggregate.ID()))
	}

	after := aggregate.Snapshot()
	after.Version = before.Version + 1

	dto := fromSnapshot(after)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, before.Version).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Wrap(result.Error)
	}

	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, aggregate.ID(), before.Version)
	}

	if err := r.changes.Append(ctx, events.NewOrderChange(&before, after)); err != nil {
		return err
	}

	aggregate.SyncPersisted(after.Version)
	return nil
}

func (r *GormOrderRepository) missingOrConflict(ctx context.Context, id kernel.UUID, version int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return pgerr.Wrap(err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("orderId", id.String())
	}
	return errs.NewTransientError(fmt.Errorf("order %s was modified after version %d", id, version))
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx), id)
}

func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderRepository) get(_ context.Context, db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, pgerr.NotFound(err, "orderId", id.String())
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) ListStaleMatching(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("status = ? AND assigned_driver_id IS NULL AND created_at < ?", int(order.Matching), cutoff).
		Order("created_at").
		Limit(limit).
		Pluck("id", &raw).Error
	if err != nil {
		return nil, pgerr.Wrap(err)
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, v := range raw {
		id, convErr := pgconv.ToUUID(v)
		if convErr != nil {
			return nil, convErr
		}
		ids = append(ids, id)
	}
	return ids, nil
}
