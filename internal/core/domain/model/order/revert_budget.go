package order

import "time"

// DefaultRevertCeiling is how many times a trip start may be reverted for lack of funds
// before the order is cancelled.
const DefaultRevertCeiling = 3

// RevertDecision is the outcome of RevertBudget.Record.
type RevertDecision int

const (
	// RevertAgain sends the order back to accepted.
	RevertAgain RevertDecision = iota + 1

	// ForceCancel ends the order as Cancelled.
	ForceCancel
)

// RevertBudget bounds the onRoute -> accepted loop. It is a value: Record returns the
// next budget rather than mutating the receiver.
type RevertBudget struct {
	count        int
	ceiling      int
	lastRevertAt *time.Time
}

// NewRevertBudget starts an empty budget with the default ceiling.
func NewRevertBudget() RevertBudget {
	return RevertBudget{ceiling: DefaultRevertCeiling}
}

// RestoreRevertBudget rebuilds a persisted budget.
func RestoreRevertBudget(count int, lastRevertAt *time.Time) RevertBudget {
	if count < 0 {
		count = 0
	}
	return RevertBudget{count: count, ceiling: DefaultRevertCeiling, lastRevertAt: cloneTime(lastRevertAt)}
}

// Count returns the reverts performed so far.
func (b RevertBudget) Count() int {
	return b.count
}

// Ceiling returns the maximum number of reverts.
func (b RevertBudget) Ceiling() int {
	if b.ceiling <= 0 {
		return DefaultRevertCeiling
	}
	return b.ceiling
}

// LastRevertAt returns when the last revert happened.
func (b RevertBudget) LastRevertAt() *time.Time {
	return cloneTime(b.lastRevertAt)
}

// Exhausted reports whether the next failure cancels the order.
func (b RevertBudget) Exhausted() bool {
	return b.count >= b.Ceiling()
}

// Record registers a failed trip start. While budget remains the count grows and the
// decision is RevertAgain; afterwards the count is left untouched and the decision is
// ForceCancel.
func (b RevertBudget) Record(now time.Time) (RevertBudget, RevertDecision) {
	if b.Exhausted() {
		return b, ForceCancel
	}
	at := now
	return RevertBudget{count: b.count + 1, ceiling: b.Ceiling(), lastRevertAt: &at}, RevertAgain
}
