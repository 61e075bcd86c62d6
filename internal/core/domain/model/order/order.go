package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ForceCancelReason is stored on orders cancelled by the revert budget.
const ForceCancelReason = "insufficient balance for trip start fee"

var (
	// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrDriverIsRequired is returned by transitions that need an assigned driver.
	ErrDriverIsRequired = errs.NewValueIsRequiredError("assignedDriverId")
)

// Order is the aggregate root of a trip request.
//
// Invariants:
//   - price is positive and the owner is set
//   - status only moves along the lifecycle graph, or along a corrective edge through
//     RevertAcceptance and RevertTripStart
//   - accepted, onRoute and completed orders have a driver
//   - once locked, the driver changes only through Reassign or RestoreDriver
//
// The aggregate remembers the snapshot it was restored from, so the repository can emit
// the before/after pair of every write.
type Order struct {
	s             Snapshot
	loaded        *Snapshot
	isConstructed bool
}

// NewOrder creates a matching order requested by ownerID.
func NewOrder(id, ownerID kernel.UUID, price int64, now time.Time) (*Order, error) {
	o := &Order{
		s: Snapshot{
			Status:    Matching,
			CreatedAt: now,
			UpdatedAt: now,
		},
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOwner(ownerID),
		o.setPrice(price),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order from persisted state.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setID(s.ID),
		o.setOwner(s.OwnerID),
		o.setPrice(s.Price),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	// A locked order may lose its driver to a raw write; it must stay loadable so the
	// driver can be restored.
	if !s.HasDriver() && !s.IsLocked() && (s.Status == Accepted || s.Status == OnRoute || s.Status == Completed) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"assignedDriverId",
			fmt.Errorf("%s order must have a driver", s.Status),
		)
	}

	o.s = s.Clone()
	loaded := s.Clone()
	o.loaded = &loaded
	return o, nil
}

// Validate ensures the order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.s.ID.IsEqual(other.s.ID)
}

func (o *Order) ID() kernel.UUID                { return o.s.ID }
func (o *Order) OwnerID() kernel.UUID           { return o.s.OwnerID }
func (o *Order) Price() int64                   { return o.s.Price }
func (o *Order) Status() Status                 { return o.s.Status }
func (o *Order) AssignedDriverID() *kernel.UUID { return cloneUUID(o.s.AssignedDriverID) }
func (o *Order) DriverID() *kernel.UUID         { return cloneUUID(o.s.DriverID) }
func (o *Order) LockedDriverID() *kernel.UUID   { return cloneUUID(o.s.LockedDriverID) }
func (o *Order) LockedAt() *time.Time           { return cloneTime(o.s.LockedAt) }
func (o *Order) AcceptedAt() *time.Time         { return cloneTime(o.s.AcceptedAt) }
func (o *Order) StartedAt() *time.Time          { return cloneTime(o.s.StartedAt) }
func (o *Order) CompletedAt() *time.Time        { return cloneTime(o.s.CompletedAt) }
func (o *Order) SettledAt() *time.Time          { return cloneTime(o.s.SettledAt) }
func (o *Order) CreatedAt() time.Time           { return o.s.CreatedAt }
func (o *Order) Version() int64                 { return o.s.Version }
func (o *Order) CancellationReason() string     { return o.s.CancellationReason }
func (o *Order) IsLocked() bool                 { return o.s.IsLocked() }

// BalanceGuard returns the acceptance balance marker, if any.
func (o *Order) BalanceGuard() *BalanceGuard {
	if o.s.BalanceGuard == nil {
		return nil
	}
	g := *o.s.BalanceGuard
	return &g
}

// RevertBudget returns the trip start revert budget.
func (o *Order) RevertBudget() RevertBudget {
	return RestoreRevertBudget(o.s.FeeRevertCount, o.s.LastFeeRevertAt)
}

// Snapshot returns the current state.
func (o *Order) Snapshot() Snapshot {
	return o.s.Clone()
}

// Loaded returns the state the order was restored from. New orders have none.
func (o *Order) Loaded() (Snapshot, bool) {
	if o.loaded == nil {
		return Snapshot{}, false
	}
	return o.loaded.Clone(), true
}

// SyncPersisted is called by the repository after a successful write. The written state
// becomes the new baseline and the version moves forward.
func (o *Order) SyncPersisted(version int64) {
	o.s.Version = version
	loaded := o.s.Clone()
	o.loaded = &loaded
}

// IsStale reports whether a matching order without a driver has waited longer than timeout.
func (o *Order) IsStale(now time.Time, timeout time.Duration) bool {
	return o.s.Status == Matching && !o.s.HasDriver() && o.s.CreatedAt.Before(now.Add(-timeout))
}

// Accept assigns driverID and moves matching -> accepted. acceptedAt is stamped once.
func (o *Order) Accept(driverID kernel.UUID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return ErrDriverIsRequired
	}
	if err := o.s.Status.CanTransitionTo(Accepted); err != nil {
		return err
	}

	o.s.Status = Accepted
	o.setDriver(&driverID)
	if o.s.AcceptedAt == nil {
		o.s.AcceptedAt = timePtr(now)
	}
	o.touch(now)
	return nil
}

// StartTrip moves accepted -> onRoute. The first start locks the order to its driver.
func (o *Order) StartTrip(now time.Time) error {
	if !o.s.HasDriver() {
		return ErrDriverIsRequired
	}
	if err := o.s.Status.CanTransitionTo(OnRoute); err != nil {
		return err
	}

	o.s.Status = OnRoute
	o.s.StartedAt = timePtr(now)
	if o.s.LockedAt == nil {
		o.s.LockedAt = timePtr(now)
		o.s.LockedDriverID = cloneUUID(o.s.AssignedDriverID)
	}
	o.touch(now)
	return nil
}

// Complete moves onRoute -> completed. Settlement follows asynchronously.
func (o *Order) Complete(now time.Time) error {
	if err := o.s.Status.CanTransitionTo(Completed); err != nil {
		return err
	}

	o.s.Status = Completed
	o.s.CompletedAt = timePtr(now)
	o.touch(now)
	return nil
}

// Cancel moves a non-terminal order into one of the cancellation variants.
func (o *Order) Cancel(to Status, reason string, now time.Time) error {
	if !to.IsCancellation() {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%s is not a cancellation", to))
	}
	if err := o.s.Status.CanTransitionTo(to); err != nil {
		return err
	}

	o.s.Status = to
	o.s.CancelledAt = timePtr(now)
	o.s.CancellationReason = reason
	o.touch(now)
	return nil
}

// Expire moves a non-terminal order to expired.
func (o *Order) Expire(now time.Time) error {
	if err := o.s.Status.CanTransitionTo(Expired); err != nil {
		return err
	}

	o.s.Status = Expired
	o.s.ExpiredAt = timePtr(now)
	o.touch(now)
	return nil
}

// RevertAcceptance undoes an acceptance the driver cannot cover. The order returns to
// matching without a driver and keeps a failed marker for that driver only.
func (o *Order) RevertAcceptance(now time.Time) error {
	if o.s.Status != Accepted {
		return errs.NewFailedPreconditionError(fmt.Sprintf("cannot revert acceptance of a %s order", o.s.Status))
	}

	if o.s.AssignedDriverID != nil {
		o.s.BalanceGuard = &BalanceGuard{DriverID: *o.s.AssignedDriverID, Passed: false, CheckedAt: now}
	}
	o.s.Status = Matching
	o.setDriver(nil)
	o.s.AcceptedAt = nil
	o.touch(now)
	return nil
}

// PassBalanceGuard records a successful acceptance check for driverID.
func (o *Order) PassBalanceGuard(driverID kernel.UUID, now time.Time) {
	o.s.BalanceGuard = &BalanceGuard{DriverID: driverID, Passed: true, CheckedAt: now}
	o.touch(now)
}

// RevertTripStart handles a trip start whose fee could not be charged. The revert budget
// decides between returning to accepted and cancelling the order.
func (o *Order) RevertTripStart(now time.Time) (RevertDecision, error) {
	if o.s.Status != OnRoute {
		return 0, errs.NewFailedPreconditionError(fmt.Sprintf("cannot revert trip start of a %s order", o.s.Status))
	}

	next, decision := o.RevertBudget().Record(now)
	switch decision {
	case RevertAgain:
		o.s.Status = Accepted
		o.s.StartedAt = nil
		o.s.FeeRevertCount = next.Count()
		o.s.LastFeeRevertAt = next.LastRevertAt()
	case ForceCancel:
		o.s.Status = Cancelled
		o.s.CancelledAt = timePtr(now)
		o.s.CancellationReason = ForceCancelReason
	}
	o.touch(now)
	return decision, nil
}

// MarkSettled stamps settledAt on a completed order. It returns false when the order was
// already settled.
func (o *Order) MarkSettled(now time.Time) (bool, error) {
	if o.s.Status != Completed {
		return false, errs.NewFailedPreconditionError(fmt.Sprintf("cannot settle a %s order", o.s.Status))
	}
	if o.s.SettledAt != nil {
		return false, nil
	}

	o.s.SettledAt = timePtr(now)
	o.touch(now)
	return true, nil
}

// Reassign moves an accepted or running order to another driver. It is the only sanctioned
// way to change the driver of a locked order and carries the lock over.
func (o *Order) Reassign(driverID kernel.UUID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return ErrDriverIsRequired
	}
	if o.s.Status != Accepted && o.s.Status != OnRoute {
		return errs.NewFailedPreconditionError(fmt.Sprintf("cannot reassign a %s order", o.s.Status))
	}
	if o.s.AssignedDriverID != nil && o.s.AssignedDriverID.IsEqual(driverID) {
		return errs.NewFailedPreconditionError("order is already assigned to this driver")
	}

	o.setDriver(&driverID)
	if o.s.LockedAt != nil {
		o.s.LockedDriverID = cloneUUID(&driverID)
	}
	o.touch(now)
	return nil
}

// RestoreDriver puts driverID back on both driver fields and, on a locked order, makes it
// the lock owner again. Used to undo an unauthorized write.
func (o *Order) RestoreDriver(driverID kernel.UUID, now time.Time) {
	o.setDriver(&driverID)
	if o.s.LockedAt != nil {
		o.s.LockedDriverID = cloneUUID(&driverID)
	}
	o.touch(now)
}

func (o *Order) setDriver(id *kernel.UUID) {
	o.s.AssignedDriverID = cloneUUID(id)
	o.s.DriverID = cloneUUID(id)
}

func (o *Order) touch(now time.Time) {
	o.s.UpdatedAt = now
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.s.ID = id
	return nil
}

func (o *Order) setOwner(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("ownerId", err)
	}
	o.s.OwnerID = id
	return nil
}

func (o *Order) setPrice(price int64) error {
	if price <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%d is not greater than 0", price))
	}
	o.s.Price = price
	return nil
}
