// Package topuprepo maps top-up requests to the topup_requests table.
package topuprepo

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/domain/model/topup"
)

type RequestDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DriverID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount      int64      `gorm:"not null"`
	Status      string     `gorm:"size:16;not null;index"`
	AdminID     *uuid.UUID `gorm:"type:uuid"`
	Notes       string     `gorm:"size:500"`
	CreatedAt   time.Time  `gorm:"not null"`
	ProcessedAt *time.Time
}

func (RequestDTO) TableName() string {
	return "topup_requests"
}

func fromDomain(r *topup.Request) RequestDTO {
	return RequestDTO{
		ID:          r.ID().Bytes(),
		DriverID:    r.DriverID().Bytes(),
		Amount:      r.Amount(),
		Status:      r.Status().String(),
		AdminID:     pgconv.UUIDPtr(r.AdminID()),
		Notes:       r.Notes(),
		CreatedAt:   r.CreatedAt(),
		ProcessedAt: r.ProcessedAt(),
	}
}

func toDomain(dto RequestDTO) (*topup.Request, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	driverID, driverErr := pgconv.ToUUID(dto.DriverID)
	adminID, adminErr := pgconv.ToUUIDPtr(dto.AdminID)
	if err := errors.Join(idErr, driverErr, adminErr); err != nil {
		return nil, err
	}
	return topup.RestoreRequest(
		id, driverID,
		dto.Amount,
		topup.Status(dto.Status),
		adminID,
		dto.Notes,
		dto.CreatedAt.UTC(),
		dto.ProcessedAt,
	)
}
