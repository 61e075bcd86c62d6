package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota

	// Matching orders wait for a driver.
	Matching

	// Accepted orders have a driver heading to pickup.
	Accepted

	// OnRoute orders are in an active trip. The first entry locks the driver.
	OnRoute

	// Completed is terminal and triggers settlement.
	Completed

	CancelledByClient
	CancelledByDriver
	CancelledByAdmin

	// Cancelled is set by the system when the trip start fee revert budget is exhausted.
	Cancelled

	// Expired is set by the stale order sweep.
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "unknown",
		Matching:          "matching",
		Accepted:          "accepted",
		OnRoute:           "onRoute",
		Completed:         "completed",
		CancelledByClient: "cancelledByClient",
		CancelledByDriver: "cancelledByDriver",
		CancelledByAdmin:  "cancelled_by_admin",
		Cancelled:         "cancelled",
		Expired:           "expired",
	}
}

// forwardEdges lists the transitions callers may request. Cancellation variants and
// expiry are added for every non-terminal state by CanTransitionTo.
func forwardEdges() map[Status]Status {
	return map[Status]Status{
		Matching: Accepted,
		Accepted: OnRoute,
		OnRoute:  Completed,
	}
}

// ParseStatus converts a stored status name.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out of range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Expired {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stored name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsCancellation reports whether s is one of the cancellation variants.
func (s Status) IsCancellation() bool {
	switch s {
	case CancelledByClient, CancelledByDriver, CancelledByAdmin, Cancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Expired || s.IsCancellation()
}

// CanTransitionTo checks that s -> to is an edge of the lifecycle graph.
// Corrective edges used by guards are not part of it.
func (s Status) CanTransitionTo(to Status) error {
	if err := validatePair(s, to); err != nil {
		return err
	}
	if s.IsTerminal() {
		return errs.NewFailedPreconditionError(fmt.Sprintf("order is %s and can no longer change", s))
	}
	if to.IsCancellation() || to == Expired {
		return nil
	}
	if next, ok := forwardEdges()[s]; ok && next == to {
		return nil
	}
	return errs.NewFailedPreconditionError(fmt.Sprintf("transition %s -> %s is not allowed", s, to))
}

// IsCorrectiveEdge reports whether from -> to is one of the guard reverts.
func IsCorrectiveEdge(from, to Status) bool {
	return (from == Accepted && to == Matching) || (from == OnRoute && to == Accepted)
}

// MarshalText stores the status by name inside change payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a stored name.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func validatePair(from, to Status) error {
	if err := from.Validate(); err != nil {
		return err
	}
	return to.Validate()
}
