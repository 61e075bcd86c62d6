package settlement

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// LedgerStore is the part of a unit of work the accessor writes through. Callers pass
// their own transaction so wallet, ledger and order changes commit together.
type LedgerStore interface {
	WalletRepository() ports.WalletRepository
	LedgerRepository() ports.LedgerRepository
}

// Delta is one requested wallet movement.
type Delta struct {
	WalletID wallet.ID
	Amount   int64
	Type     ledger.EntryType
	Key      ledger.Key
	OrderID  *kernel.UUID
	PayoutID *kernel.UUID
	TopupID  *kernel.UUID
	Metadata map[string]string
}

// Result describes the ledger entry behind a movement.
type Result struct {
	EntryID        kernel.UUID
	BalanceBefore  int64
	BalanceAfter   int64
	AlreadyApplied bool
}

// WalletAccessor applies deltas atomically within the caller's transaction.
type WalletAccessor struct {
	clock ports.Clock
}

func NewWalletAccessor(clock ports.Clock) WalletAccessor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return WalletAccessor{clock: clock}
}

// Apply moves d.Amount into d.WalletID and records the ledger entry.
//
// The wallet row is locked before the key is checked, so two deliveries of the same
// movement serialize on the row and the second one observes the first entry. A credit
// to a missing wallet opens it; a debit from a missing wallet is not-found. A debit
// that would turn the balance negative fails with wallet.ErrInsufficientBalance and
// changes nothing.
func (a WalletAccessor) Apply(ctx context.Context, store LedgerStore, d Delta) (Result, error) {
	if err := d.validate(); err != nil {
		return Result{}, err
	}

	w, err := a.lockOrOpen(ctx, store, d.WalletID, d.Amount > 0)
	if err != nil {
		return Result{}, err
	}

	existing, err := store.LedgerRepository().FindByKey(ctx, d.WalletID, d.Key)
	switch {
	case err == nil:
		return Result{
			EntryID:        existing.ID(),
			BalanceBefore:  existing.BalanceBefore(),
			BalanceAfter:   existing.BalanceAfter(),
			AlreadyApplied: true,
		}, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return Result{}, err
	}

	now := a.clock.Now()
	before, after, err := w.ApplyDelta(d.Amount, now)
	if err != nil {
		return Result{}, err
	}

	entry, err := ledger.NewEntry(kernel.NewUUID(), ledger.Movement{
		WalletID:      d.WalletID,
		Key:           d.Key,
		Type:          d.Type,
		Amount:        d.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		References: ledger.References{
			OrderID:  d.OrderID,
			PayoutID: d.PayoutID,
			TopupID:  d.TopupID,
		},
		Metadata: d.Metadata,
	}, now)
	if err != nil {
		return Result{}, err
	}

	if err = store.WalletRepository().Update(ctx, w); err != nil {
		return Result{}, err
	}
	if err = store.LedgerRepository().Add(ctx, entry); err != nil {
		return Result{}, err
	}

	return Result{EntryID: entry.ID(), BalanceBefore: before, BalanceAfter: after}, nil
}

// Reserve holds amount of the wallet's available balance for a pending payout.
func (a WalletAccessor) Reserve(ctx context.Context, store LedgerStore, id wallet.ID, amount int64) error {
	w, err := store.WalletRepository().GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if err = w.Reserve(amount, a.clock.Now()); err != nil {
		return err
	}
	return store.WalletRepository().Update(ctx, w)
}

// ReleaseReservation gives back a reservation made by Reserve.
func (a WalletAccessor) ReleaseReservation(ctx context.Context, store LedgerStore, id wallet.ID, amount int64) error {
	w, err := store.WalletRepository().GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if err = w.ReleaseReservation(amount, a.clock.Now()); err != nil {
		return err
	}
	return store.WalletRepository().Update(ctx, w)
}

func (a WalletAccessor) lockOrOpen(ctx context.Context, store LedgerStore, id wallet.ID, open bool) (*wallet.Wallet, error) {
	w, err := store.WalletRepository().GetForUpdate(ctx, id)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) || !open {
		return nil, err
	}

	w, err = wallet.NewWallet(id, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if err = store.WalletRepository().Add(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (d Delta) validate() error {
	if err := errors.Join(d.WalletID.Validate(), d.Type.Validate()); err != nil {
		return err
	}
	if d.Key == "" {
		return errs.NewValueIsRequiredError("idempotencyKey")
	}
	if d.Amount == 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("movement of %s must not be zero", d.Key))
	}
	return nil
}
