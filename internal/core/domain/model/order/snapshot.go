package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Snapshot is the full state of an order at one point in time. It is the unit carried
// by change notifications and the input of RestoreOrder.
type Snapshot struct {
	ID                 kernel.UUID   `json:"id"`
	OwnerID            kernel.UUID   `json:"ownerId"`
	Price              int64         `json:"price"`
	Status             Status        `json:"status"`
	AssignedDriverID   *kernel.UUID  `json:"assignedDriverId,omitempty"`
	DriverID           *kernel.UUID  `json:"driverId,omitempty"`
	LockedDriverID     *kernel.UUID  `json:"lockedDriverId,omitempty"`
	LockedAt           *time.Time    `json:"lockedAt,omitempty"`
	AcceptedAt         *time.Time    `json:"acceptedAt,omitempty"`
	StartedAt          *time.Time    `json:"startedAt,omitempty"`
	CompletedAt        *time.Time    `json:"completedAt,omitempty"`
	SettledAt          *time.Time    `json:"settledAt,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	ExpiredAt          *time.Time    `json:"expiredAt,omitempty"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	BalanceGuard       *BalanceGuard `json:"balanceGuard,omitempty"`
	FeeRevertCount     int           `json:"feeRevertCount"`
	LastFeeRevertAt    *time.Time    `json:"lastFeeRevertAt,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	Version            int64         `json:"version"`
}

// IsLocked reports whether the order has been locked to a driver.
func (s Snapshot) IsLocked() bool {
	return s.LockedAt != nil
}

// HasDriver reports whether a driver is assigned.
func (s Snapshot) HasDriver() bool {
	return s.AssignedDriverID != nil
}

// Clone returns a copy that shares no pointers with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.AssignedDriverID = cloneUUID(s.AssignedDriverID)
	c.DriverID = cloneUUID(s.DriverID)
	c.LockedDriverID = cloneUUID(s.LockedDriverID)
	c.LockedAt = cloneTime(s.LockedAt)
	c.AcceptedAt = cloneTime(s.AcceptedAt)
	c.StartedAt = cloneTime(s.StartedAt)
	c.CompletedAt = cloneTime(s.CompletedAt)
	c.SettledAt = cloneTime(s.SettledAt)
	c.CancelledAt = cloneTime(s.CancelledAt)
	c.ExpiredAt = cloneTime(s.ExpiredAt)
	c.LastFeeRevertAt = cloneTime(s.LastFeeRevertAt)
	if s.BalanceGuard != nil {
		g := *s.BalanceGuard
		c.BalanceGuard = &g
	}
	return c
}

func cloneUUID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func timePtr(t time.Time) *time.Time {
	return &t
}
