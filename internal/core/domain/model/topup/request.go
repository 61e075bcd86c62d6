package topup

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	MinAmount int64 = 1_000
	MaxAmount int64 = 100_000
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a top-up status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}

// ErrRequestIsNotConstructed is returned when a Request was not built by NewRequest or RestoreRequest.
var ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest constructor")

// Request is a driver's pending credit.
type Request struct {
	id            kernel.UUID
	driverID      kernel.UUID
	amount        int64
	status        Status
	adminID       *kernel.UUID
	notes         string
	createdAt     time.Time
	processedAt   *time.Time
	isConstructed bool
}

func NewRequest(id, driverID kernel.UUID, amount int64, now time.Time) (*Request, error) {
	if err := errors.Join(id.Validate(), driverID.Validate(), validateAmount(amount)); err != nil {
		return nil, err
	}
	return &Request{
		id:            id,
		driverID:      driverID,
		amount:        amount,
		status:        StatusPending,
		createdAt:     now,
		isConstructed: true,
	}, nil
}

func RestoreRequest(
	id, driverID kernel.UUID,
	amount int64,
	status Status,
	adminID *kernel.UUID,
	notes string,
	createdAt time.Time,
	processedAt *time.Time,
) (*Request, error) {
	if err := errors.Join(id.Validate(), driverID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	return &Request{
		id:            id,
		driverID:      driverID,
		amount:        amount,
		status:        status,
		adminID:       adminID,
		notes:         notes,
		createdAt:     createdAt,
		processedAt:   processedAt,
		isConstructed: true,
	}, nil
}

func (r *Request) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRequestIsNotConstructed
	}
	return nil
}

func (r *Request) ID() kernel.UUID         { return r.id }
func (r *Request) DriverID() kernel.UUID   { return r.driverID }
func (r *Request) Amount() int64           { return r.amount }
func (r *Request) Status() Status          { return r.status }
func (r *Request) AdminID() *kernel.UUID   { return r.adminID }
func (r *Request) Notes() string           { return r.notes }
func (r *Request) CreatedAt() time.Time    { return r.createdAt }
func (r *Request) ProcessedAt() *time.Time { return r.processedAt }

// Approve marks the request approved. It returns false without error when it already was,
// so the caller skips the credit.
func (r *Request) Approve(adminID kernel.UUID, now time.Time) (bool, error) {
	switch r.status {
	case StatusApproved:
		return false, nil
	case StatusRejected:
		return false, errs.NewFailedPreconditionError("request already rejected")
	}
	r.status = StatusApproved
	r.adminID = &adminID
	r.processedAt = &now
	return true, nil
}

// Reject closes a pending request.
func (r *Request) Reject(adminID kernel.UUID, reason string, now time.Time) error {
	if r.status != StatusPending {
		return errs.NewFailedPreconditionError("request already " + r.status.String())
	}
	r.status = StatusRejected
	r.adminID = &adminID
	r.notes = reason
	r.processedAt = &now
	return nil
}

func validateAmount(amount int64) error {
	if amount < MinAmount || amount > MaxAmount {
		return errs.NewValueIsOutOfRangeError("amount", amount, MinAmount, MaxAmount)
	}
	return nil
}
