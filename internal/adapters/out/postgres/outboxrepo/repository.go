package outboxrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/ports"
)

// NotifyChannel is the LISTEN channel woken by every appended change.
const NotifyChannel = "order_changes"

// GormOutboxRepository appends and relays order changes.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Append stores change in the caller's transaction and signals listeners. The signal is
// delivered by Postgres only when the transaction commits.
func (r *GormOutboxRepository) Append(ctx context.Context, change events.OrderChange) error {
	payload, err := change.Encode()
	if err != nil {
		return err
	}

	dto := OrderChangeDTO{
		EventID:   change.EventID,
		OrderID:   change.OrderID.Bytes(),
		Payload:   payload,
		CreatedAt: change.OccurredAt,
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Wrap(err)
	}

	return pgerr.Wrap(r.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", NotifyChannel, change.EventID).Error)
}

// ListUnpublished locks the returned rows so concurrent relays pick disjoint batches.
func (r *GormOutboxRepository) ListUnpublished(ctx context.Context, limit int) ([]ports.OrderChangeRecord, error) {
	var dtos []OrderChangeDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("seq").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Wrap(err)
	}

	records := make([]ports.OrderChangeRecord, 0, len(dtos))
	for _, dto := range dtos {
		rec, convErr := toRecord(dto)
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, seqs []int64, at time.Time) error {
	if len(seqs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&OrderChangeDTO{}).
		Where("seq IN ?", seqs).
		Update("published_at", at).Error
	return pgerr.Wrap(err)
}
