package wallet

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
)

var (
	// ErrWalletIsNotConstructed is returned when a Wallet was not built by NewWallet or RestoreWallet.
	ErrWalletIsNotConstructed = errors.New("Wallet must be created via NewWallet constructor")

	// ErrInsufficientBalance is returned when a debit would make the balance negative.
	ErrInsufficientBalance = errs.NewFailedPreconditionError("insufficient balance")

	// ErrInsufficientAvailableBalance is returned when a reservation exceeds balance minus pending payouts.
	ErrInsufficientAvailableBalance = errs.NewFailedPreconditionError("insufficient available balance")
)

// Wallet holds a balance and the running totals of every movement applied to it.
type Wallet struct {
	id            ID
	balance       int64
	totalCredited int64
	totalDebited  int64
	pendingPayout int64
	currency      string
	createdAt     time.Time
	updatedAt     time.Time
	isConstructed bool
}

// NewWallet opens an empty wallet.
func NewWallet(id ID, now time.Time) (*Wallet, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Wallet{
		id:            id,
		currency:      Currency,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

// RestoreWallet rebuilds a persisted wallet.
func RestoreWallet(
	id ID,
	balance, totalCredited, totalDebited, pendingPayout int64,
	currency string,
	createdAt, updatedAt time.Time,
) (*Wallet, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if pendingPayout < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("pendingPayout", fmt.Errorf("%d is negative", pendingPayout))
	}
	if currency == "" {
		currency = Currency
	}
	return &Wallet{
		id:            id,
		balance:       balance,
		totalCredited: totalCredited,
		totalDebited:  totalDebited,
		pendingPayout: pendingPayout,
		currency:      currency,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the wallet was built through a constructor.
func (w *Wallet) Validate() error {
	if w == nil || !w.isConstructed {
		return ErrWalletIsNotConstructed
	}
	return nil
}

func (w *Wallet) ID() ID               { return w.id }
func (w *Wallet) Balance() int64       { return w.balance }
func (w *Wallet) TotalCredited() int64 { return w.totalCredited }
func (w *Wallet) TotalDebited() int64  { return w.totalDebited }
func (w *Wallet) PendingPayout() int64 { return w.pendingPayout }
func (w *Wallet) Currency() string     { return w.currency }
func (w *Wallet) CreatedAt() time.Time { return w.createdAt }
func (w *Wallet) UpdatedAt() time.Time { return w.updatedAt }

// Available is the balance not reserved for pending payouts.
func (w *Wallet) Available() int64 {
	return w.balance - w.pendingPayout
}

// ApplyDelta adds a signed amount and returns the balance before and after. A debit that
// would leave a negative balance is rejected and leaves the wallet untouched.
func (w *Wallet) ApplyDelta(amount int64, now time.Time) (int64, int64, error) {
	if amount == 0 {
		return 0, 0, errs.NewValueIsInvalidErrorWithCause("amount", errors.New("must not be zero"))
	}

	before := w.balance
	after := before + amount
	if amount < 0 && after < 0 {
		return before, before, ErrInsufficientBalance
	}

	w.balance = after
	if amount > 0 {
		w.totalCredited += amount
	} else {
		w.totalDebited -= amount
	}
	w.updatedAt = now
	return before, after, nil
}

// Reserve earmarks amount for a payout.
func (w *Wallet) Reserve(amount int64, now time.Time) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is not greater than 0", amount))
	}
	if amount > w.Available() {
		return ErrInsufficientAvailableBalance
	}
	w.pendingPayout += amount
	w.updatedAt = now
	return nil
}

// ReleaseReservation gives back a reservation made by Reserve.
func (w *Wallet) ReleaseReservation(amount int64, now time.Time) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is not greater than 0", amount))
	}
	if amount > w.pendingPayout {
		return errs.NewFailedPreconditionError(
			fmt.Sprintf("release of %d exceeds pending payout %d", amount, w.pendingPayout),
		)
	}
	w.pendingPayout -= amount
	w.updatedAt = now
	return nil
}
