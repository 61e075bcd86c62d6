package services

import "fmt"

// FailurePolicy decides what a guard does when its own check cannot be completed,
// for example because the store is unavailable.
type FailurePolicy int

const (
	// FailClosed blocks the guarded effect and surfaces the error for retry.
	FailClosed FailurePolicy = iota
	// FailOpen lets the effect proceed and only records the failure.
	FailOpen
)

func (p FailurePolicy) String() string {
	switch p {
	case FailClosed:
		return "fail-closed"
	case FailOpen:
		return "fail-open"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// Resolve applies the policy to a check error. A nil result means the caller continues.
// Guards that move money must be FailClosed.
func (p FailurePolicy) Resolve(checkErr error) error {
	if checkErr == nil || p == FailOpen {
		return nil
	}
	return checkErr
}
