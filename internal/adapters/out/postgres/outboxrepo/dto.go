// Package outboxrepo stores the order change outbox.
package outboxrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/ports"
)

// OrderChangeDTO is one outbox row. Seq orders rows in write order.
type OrderChangeDTO struct {
	Seq         int64      `gorm:"primaryKey;autoIncrement"`
	EventID     string     `gorm:"size:80;not null;uniqueIndex"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	PublishedAt *time.Time `gorm:"index"`
}

func (OrderChangeDTO) TableName() string {
	return "order_changes"
}

func toRecord(dto OrderChangeDTO) (ports.OrderChangeRecord, error) {
	orderID, err := pgconv.ToUUID(dto.OrderID)
	if err != nil {
		return ports.OrderChangeRecord{}, err
	}
	return ports.OrderChangeRecord{
		Seq:       dto.Seq,
		EventID:   dto.EventID,
		OrderID:   orderID,
		Payload:   dto.Payload,
		CreatedAt: dto.CreatedAt,
	}, nil
}
