package services

import (
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// DefaultAdminWindow is how long an admin reassignment authorizes the matching driver change.
const DefaultAdminWindow = 60 * time.Second

// ExclusivityVerdict is the outcome of checking one order change.
type ExclusivityVerdict int

const (
	// NotApplicable means the change did not move a locked order to another driver.
	NotApplicable ExclusivityVerdict = iota
	// Authorized means the move is covered by the lock owner or a recent admin action.
	Authorized
	// Unauthorized means the previous driver must be restored.
	Unauthorized
)

// ExclusivityPolicy decides whether a driver change on a locked order is allowed.
//
// Business rules:
//   - only changes where the previous state was locked are considered
//   - a grant for (order, new driver) within the window allows the move; grants come
//     from admin reassignments and from the guard's own restorations
//   - anything else, including clearing the driver, is unauthorized
type ExclusivityPolicy struct {
	adminWindow time.Duration
}

// NewExclusivityPolicy returns a policy using window, or DefaultAdminWindow when window is not positive.
func NewExclusivityPolicy(window time.Duration) ExclusivityPolicy {
	if window <= 0 {
		window = DefaultAdminWindow
	}
	return ExclusivityPolicy{adminWindow: window}
}

func (p ExclusivityPolicy) AdminWindow() time.Duration {
	return p.adminWindow
}

// NeedsReview reports whether the change moved a locked order to another driver, before
// any grant is looked up.
func (p ExclusivityPolicy) NeedsReview(before, after *order.Snapshot) bool {
	return p.Evaluate(before, after, nil, time.Time{}) == Unauthorized
}

// Evaluate classifies the change from before to after. grants are the recent grants
// recorded for the order; now is the reference instant for the window.
func (p ExclusivityPolicy) Evaluate(
	before, after *order.Snapshot,
	grants []audit.Grant,
	now time.Time,
) ExclusivityVerdict {
	if before == nil || after == nil || !before.IsLocked() {
		return NotApplicable
	}
	if before.AssignedDriverID == nil || kernel.SameUUID(before.AssignedDriverID, after.AssignedDriverID) {
		return NotApplicable
	}
	if after.AssignedDriverID == nil {
		return Unauthorized
	}
	for _, g := range grants {
		if g.Covers(after.ID, *after.AssignedDriverID, now, p.adminWindow) {
			return Authorized
		}
	}
	return Unauthorized
}
