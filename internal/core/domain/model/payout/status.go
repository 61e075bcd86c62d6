package payout

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

type Status string

const (
	StatusRequested  Status = "requested"
	StatusApproved   Status = "approved"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// ParseStatus accepts the wire names of the payout statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s Status) Validate() error {
	switch s {
	case StatusRequested, StatusApproved, StatusProcessing, StatusCompleted, StatusRejected:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a payout status", string(s)))
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

func (s Status) String() string {
	return string(s)
}
