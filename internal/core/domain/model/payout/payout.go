package payout

import (
	"errors"
	"maps"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	MinAmount int64 = 10_000
	MaxAmount int64 = 1_000_000
)

var (
	// ErrPayoutIsNotConstructed is returned when a Payout was not built by NewPayout or RestorePayout.
	ErrPayoutIsNotConstructed = errors.New("Payout must be created via NewPayout constructor")

	ErrAlreadyCompleted = errs.NewFailedPreconditionError("payout is already completed")
	ErrAlreadyRejected  = errs.NewFailedPreconditionError("payout is already rejected")
)

// Payout is a withdrawal request against a driver wallet.
type Payout struct {
	id              kernel.UUID
	driverID        kernel.UUID
	amount          int64
	method          Method
	recipientInfo   map[string]string
	note            string
	status          Status
	requestedBy     kernel.UUID
	processedBy     *kernel.UUID
	ledgerEntryID   *kernel.UUID
	createdAt       time.Time
	updatedAt       time.Time
	completedAt     *time.Time
	rejectedAt      *time.Time
	rejectionReason string
	isConstructed   bool
}

// NewPayout validates a request created by admin on behalf of a driver.
func NewPayout(
	id, driverID kernel.UUID,
	amount int64,
	method Method,
	recipientInfo map[string]string,
	note string,
	requestedBy kernel.UUID,
	now time.Time,
) (*Payout, error) {
	if err := errors.Join(
		id.Validate(),
		driverID.Validate(),
		requestedBy.Validate(),
		method.Validate(),
		validateAmount(amount),
	); err != nil {
		return nil, err
	}
	return &Payout{
		id:            id,
		driverID:      driverID,
		amount:        amount,
		method:        method,
		recipientInfo: maps.Clone(recipientInfo),
		note:          note,
		status:        StatusRequested,
		requestedBy:   requestedBy,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

// State is the persisted form of a Payout.
type State struct {
	ID              kernel.UUID
	DriverID        kernel.UUID
	Amount          int64
	Method          Method
	RecipientInfo   map[string]string
	Note            string
	Status          Status
	RequestedBy     kernel.UUID
	ProcessedBy     *kernel.UUID
	LedgerEntryID   *kernel.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason string
}

// RestorePayout rebuilds a persisted payout.
func RestorePayout(s State) (*Payout, error) {
	if err := errors.Join(s.ID.Validate(), s.DriverID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	return &Payout{
		id:              s.ID,
		driverID:        s.DriverID,
		amount:          s.Amount,
		method:          s.Method,
		recipientInfo:   maps.Clone(s.RecipientInfo),
		note:            s.Note,
		status:          s.Status,
		requestedBy:     s.RequestedBy,
		processedBy:     s.ProcessedBy,
		ledgerEntryID:   s.LedgerEntryID,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		completedAt:     s.CompletedAt,
		rejectedAt:      s.RejectedAt,
		rejectionReason: s.RejectionReason,
		isConstructed:   true,
	}, nil
}

func (p *Payout) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPayoutIsNotConstructed
	}
	return nil
}

func (p *Payout) ID() kernel.UUID       { return p.id }
func (p *Payout) DriverID() kernel.UUID { return p.driverID }
func (p *Payout) Amount() int64         { return p.amount }
func (p *Payout) Method() Method        { return p.method }
func (p *Payout) Status() Status        { return p.status }

// State exports the payout for persistence.
func (p *Payout) State() State {
	return State{
		ID:              p.id,
		DriverID:        p.driverID,
		Amount:          p.amount,
		Method:          p.method,
		RecipientInfo:   maps.Clone(p.recipientInfo),
		Note:            p.note,
		Status:          p.status,
		RequestedBy:     p.requestedBy,
		ProcessedBy:     p.processedBy,
		LedgerEntryID:   p.ledgerEntryID,
		CreatedAt:       p.createdAt,
		UpdatedAt:       p.updatedAt,
		CompletedAt:     p.completedAt,
		RejectedAt:      p.rejectedAt,
		RejectionReason: p.rejectionReason,
	}
}

// Advance moves a pending payout to approved or processing. Repeating the current
// status is allowed.
func (p *Payout) Advance(to Status, adminID kernel.UUID, now time.Time) error {
	if to != StatusApproved && to != StatusProcessing {
		return errs.NewValueIsInvalidErrorWithCause("status", errors.New("only approved or processing can be set directly"))
	}
	if err := p.rejectIfTerminal(); err != nil {
		return err
	}
	if p.status == StatusProcessing && to == StatusApproved {
		return errs.NewFailedPreconditionError("payout is already processing")
	}
	p.status = to
	p.processedBy = &adminID
	p.updatedAt = now
	return nil
}

// Complete resolves the payout as paid. It returns false without error when the payout
// was already completed.
func (p *Payout) Complete(adminID, entryID kernel.UUID, now time.Time) (bool, error) {
	switch p.status {
	case StatusCompleted:
		return false, nil
	case StatusRejected:
		return false, ErrAlreadyRejected
	}
	p.status = StatusCompleted
	p.processedBy = &adminID
	p.ledgerEntryID = &entryID
	p.completedAt = &now
	p.updatedAt = now
	return true, nil
}

// Reject resolves the payout without charging. It returns false without error when the
// payout was already rejected.
func (p *Payout) Reject(adminID kernel.UUID, reason string, now time.Time) (bool, error) {
	switch p.status {
	case StatusRejected:
		return false, nil
	case StatusCompleted:
		return false, ErrAlreadyCompleted
	}
	p.status = StatusRejected
	p.processedBy = &adminID
	p.rejectionReason = reason
	p.rejectedAt = &now
	p.updatedAt = now
	return true, nil
}

func (p *Payout) rejectIfTerminal() error {
	switch p.status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusRejected:
		return ErrAlreadyRejected
	}
	return nil
}

func validateAmount(amount int64) error {
	if amount < MinAmount || amount > MaxAmount {
		return errs.NewValueIsOutOfRangeError("amount", amount, MinAmount, MaxAmount)
	}
	return nil
}
