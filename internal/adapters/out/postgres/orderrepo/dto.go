// Package orderrepo maps the order aggregate to the orders table.
package orderrepo

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/adapters/out/postgres/pgconv"
	"dispatch/internal/core/domain/model/order"
)

// OrderDTO is the row of one order. The composite index serves the stale order sweep.
type OrderDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Price              int64      `gorm:"not null"`
	Status             int        `gorm:"not null;index:idx_orders_status_created,priority:1"`
	AssignedDriverID   *uuid.UUID `gorm:"type:uuid;index"`
	DriverID           *uuid.UUID `gorm:"type:uuid"`
	LockedDriverID     *uuid.UUID `gorm:"type:uuid"`
	LockedAt           *time.Time
	AcceptedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	SettledAt          *time.Time
	CancelledAt        *time.Time
	ExpiredAt          *time.Time
	CancellationReason string          `gorm:"size:255"`
	BalanceGuard       BalanceGuardDTO `gorm:"embedded;embeddedPrefix:balance_guard_"`
	FeeRevertCount     int             `gorm:"not null;default:0"`
	LastFeeRevertAt    *time.Time
	CreatedAt          time.Time `gorm:"not null;index:idx_orders_status_created,priority:2"`
	UpdatedAt          time.Time `gorm:"not null"`
	Version            int64     `gorm:"not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// BalanceGuardDTO holds the acceptance balance marker. A nil driver means no marker.
type BalanceGuardDTO struct {
	DriverID  *uuid.UUID `gorm:"type:uuid"`
	Passed    bool
	CheckedAt *time.Time
}

func fromSnapshot(s order.Snapshot) OrderDTO {
	dto := OrderDTO{
		ID:                 s.ID.Bytes(),
		OwnerID:            s.OwnerID.Bytes(),
		Price:              s.Price,
		Status:             int(s.Status),
		AssignedDriverID:   pgconv.UUIDPtr(s.AssignedDriverID),
		DriverID:           pgconv.UUIDPtr(s.DriverID),
		LockedDriverID:     pgconv.UUIDPtr(s.LockedDriverID),
		LockedAt:           s.LockedAt,
		AcceptedAt:         s.AcceptedAt,
		StartedAt:          s.StartedAt,
		CompletedAt:        s.CompletedAt,
		SettledAt:          s.SettledAt,
		CancelledAt:        s.CancelledAt,
		ExpiredAt:          s.ExpiredAt,
		CancellationReason: s.CancellationReason,
		FeeRevertCount:     s.FeeRevertCount,
		LastFeeRevertAt:    s.LastFeeRevertAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		Version:            s.Version,
	}
	if g := s.BalanceGuard; g != nil {
		driverID := g.DriverID.Bytes()
		checkedAt := g.CheckedAt
		dto.BalanceGuard = BalanceGuardDTO{DriverID: &driverID, Passed: g.Passed, CheckedAt: &checkedAt}
	}
	return dto
}

func toSnapshot(dto OrderDTO) (order.Snapshot, error) {
	id, idErr := pgconv.ToUUID(dto.ID)
	ownerID, ownerErr := pgconv.ToUUID(dto.OwnerID)
	assigned, assignedErr := pgconv.ToUUIDPtr(dto.AssignedDriverID)
	driver, driverErr := pgconv.ToUUIDPtr(dto.DriverID)
	locked, lockedErr := pgconv.ToUUIDPtr(dto.LockedDriverID)
	if err := errors.Join(idErr, ownerErr, assignedErr, driverErr, lockedErr); err != nil {
		return order.Snapshot{}, err
	}

	s := order.Snapshot{
		ID:                 id,
		OwnerID:            ownerID,
		Price:              dto.Price,
		Status:             order.Status(dto.Status),
		AssignedDriverID:   assigned,
		DriverID:           driver,
		LockedDriverID:     locked,
		LockedAt:           utcPtr(dto.LockedAt),
		AcceptedAt:         utcPtr(dto.AcceptedAt),
		StartedAt:          utcPtr(dto.StartedAt),
		CompletedAt:        utcPtr(dto.CompletedAt),
		SettledAt:          utcPtr(dto.SettledAt),
		CancelledAt:        utcPtr(dto.CancelledAt),
		ExpiredAt:          utcPtr(dto.ExpiredAt),
		CancellationReason: dto.CancellationReason,
		FeeRevertCount:     dto.FeeRevertCount,
		LastFeeRevertAt:    utcPtr(dto.LastFeeRevertAt),
		CreatedAt:          dto.CreatedAt.UTC(),
		UpdatedAt:          dto.UpdatedAt.UTC(),
		Version:            dto.Version,
	}
	if g := dto.BalanceGuard; g.DriverID != nil {
		driverID, err := pgconv.ToUUID(*g.DriverID)
		if err != nil {
			return order.Snapshot{}, err
		}
		var checkedAt time.Time
		if g.CheckedAt != nil {
			checkedAt = g.CheckedAt.UTC()
		}
		s.BalanceGuard = &order.BalanceGuard{DriverID: driverID, Passed: g.Passed, CheckedAt: checkedAt}
	}
	return s, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	s, err := toSnapshot(dto)
	if err != nil {
		return nil, err
	}
	return order.RestoreOrder(s)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
