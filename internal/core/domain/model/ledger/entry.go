package ledger

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
)

// ErrEntryIsNotConstructed is returned when an Entry was not built by NewEntry or RestoreEntry.
var ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry constructor")

// References ties an entry to the aggregate that caused it.
type References struct {
	OrderID  *kernel.UUID
	PayoutID *kernel.UUID
	TopupID  *kernel.UUID
}

// Movement describes one wallet mutation before it is written.
type Movement struct {
	WalletID      wallet.ID
	Key           Key
	Type          EntryType
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	References    References
	Metadata      map[string]string
}

// Entry is one immutable ledger line.
type Entry struct {
	id            kernel.UUID
	seq           int64
	movement      Movement
	createdAt     time.Time
	isConstructed bool
}

// NewEntry builds the entry for a movement.
func NewEntry(id kernel.UUID, m Movement, now time.Time) (*Entry, error) {
	if err := errors.Join(id.Validate(), validateMovement(m)); err != nil {
		return nil, err
	}
	return &Entry{id: id, movement: cloneMovement(m), createdAt: now, isConstructed: true}, nil
}

// RestoreEntry rebuilds a persisted entry. Balance arithmetic is not re-checked here so
// that historical inconsistencies can still be loaded and reported by Replay.
func RestoreEntry(id kernel.UUID, seq int64, m Movement, createdAt time.Time) (*Entry, error) {
	if err := errors.Join(id.Validate(), m.WalletID.Validate(), m.Type.Validate()); err != nil {
		return nil, err
	}
	return &Entry{id: id, seq: seq, movement: cloneMovement(m), createdAt: createdAt, isConstructed: true}, nil
}

// Validate ensures the entry was built through a constructor.
func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

func (e *Entry) ID() kernel.UUID             { return e.id }
func (e *Entry) Seq() int64                  { return e.seq }
func (e *Entry) WalletID() wallet.ID         { return e.movement.WalletID }
func (e *Entry) Key() Key                    { return e.movement.Key }
func (e *Entry) Type() EntryType             { return e.movement.Type }
func (e *Entry) Amount() int64               { return e.movement.Amount }
func (e *Entry) BalanceBefore() int64        { return e.movement.BalanceBefore }
func (e *Entry) BalanceAfter() int64         { return e.movement.BalanceAfter }
func (e *Entry) CreatedAt() time.Time        { return e.createdAt }
func (e *Entry) References() References      { return cloneMovement(e.movement).References }
func (e *Entry) Metadata() map[string]string { return maps.Clone(e.movement.Metadata) }

func validateMovement(m Movement) error {
	if err := errors.Join(m.WalletID.Validate(), m.Type.Validate()); err != nil {
		return err
	}
	if m.Key == "" {
		return errs.NewValueIsRequiredError("idempotencyKey")
	}
	if m.Amount == 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", errors.New("must not be zero"))
	}
	if m.BalanceAfter != m.BalanceBefore+m.Amount {
		return errs.NewValueIsInvalidErrorWithCause(
			"balanceAfter",
			fmt.Errorf("%d != %d + %d", m.BalanceAfter, m.BalanceBefore, m.Amount),
		)
	}
	return nil
}

func cloneMovement(m Movement) Movement {
	c := m
	c.Metadata = maps.Clone(m.Metadata)
	c.References = References{
		OrderID:  cloneUUID(m.References.OrderID),
		PayoutID: cloneUUID(m.References.PayoutID),
		TopupID:  cloneUUID(m.References.TopupID),
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
