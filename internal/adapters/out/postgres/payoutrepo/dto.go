// Package payoutrepo maps payouts to the payouts table.
package payoutrepo

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/domain/model/payout"
)

type PayoutDTO struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	DriverID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount          int64             `gorm:"not null"`
	Method          string            `gorm:"size:32;not null"`
	RecipientInfo   map[string]string `gorm:"serializer:json;type:jsonb"`
	Note            string            `gorm:"size:500"`
	Status          string            `gorm:"size:16;not null;index"`
	RequestedBy     uuid.UUID         `gorm:"type:uuid;not null"`
	ProcessedBy     *uuid.UUID        `gorm:"type:uuid"`
	LedgerEntryID   *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt       time.Time         `gorm:"not null"`
	UpdatedAt       time.Time         `gorm:"not null"`
	CompletedAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason string `gorm:"size:500"`
}

func (PayoutDTO) TableName() string {
	return "payouts"
}

func fromDomain(p *payout.Payout) PayoutDTO {
	s := p.State()
	return PayoutDTO{
		ID:              s.ID.Bytes(),
		DriverID:        s.DriverID.Bytes(),
		Amount:          s.Amount,
		Method:          s.Method.String(),
		RecipientInfo:   s.RecipientInfo,
		Note:            s.Note,
		Status:          s.Status.String(),
		RequestedBy:     s.RequestedBy.Bytes(),
		ProcessedBy:     pgconv.UUIDPtr(s.ProcessedBy),
		LedgerEntryID:   pgconv.UUIDPtr(s.LedgerEntryID),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		CompletedAt:     s.CompletedAt,
		RejectedAt:      s.RejectedAt,
		RejectionReason: s.RejectionReason,
	}
}

func toDomain(dto PayoutDTO) (*payout.Payout, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	driverID, driverErr := pgconv.ToUUID(dto.DriverID)
	requestedBy, requestedErr := pgconv.ToUUID(dto.RequestedBy)
	processedBy, processedErr := pgconv.ToUUIDPtr(dto.ProcessedBy)
	entryID, entryErr := pgconv.ToUUIDPtr(dto.LedgerEntryID)
	if err := errors.Join(idErr, driverErr, requestedErr, processedErr, entryErr); err != nil {
		return nil, err
	}

	return payout.RestorePayout(payout.State{
		ID:              id,
		DriverID:        driverID,
		Amount:          dto.Amount,
		Method:          payout.Method(dto.Method),
		RecipientInfo:   dto.RecipientInfo,
		Note:            dto.Note,
		Status:          payout.Status(dto.Status),
		RequestedBy:     requestedBy,
		ProcessedBy:     processedBy,
		LedgerEntryID:   entryID,
		CreatedAt:       dto.CreatedAt.UTC(),
		UpdatedAt:       dto.UpdatedAt.UTC(),
		CompletedAt:     dto.CompletedAt,
		RejectedAt:      dto.RejectedAt,
		RejectionReason: dto.RejectionReason,
	})
}
