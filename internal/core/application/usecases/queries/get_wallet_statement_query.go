package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultStatementLines = 50
	MaxStatementLines     = 200
)

var ErrGetWalletStatementQueryIsNotConstructed = errors.New(
	"GetWalletStatementQuery must be created via NewGetWalletStatementQuery constructor",
)

// GetWalletStatementQuery returns a wallet's balances and its most recent ledger lines.
// Drivers read their own wallet; admins read any wallet.
type GetWalletStatementQuery struct {
	actor    kernel.Actor
	walletID wallet.ID
	lines    int

	guard guard.ConstructorGuard
}

func NewGetWalletStatementQuery(actor kernel.Actor, walletID wallet.ID, lines int) (GetWalletStatementQuery, error) {
	if lines == 0 {
		lines = DefaultStatementLines
	}
	var errList []error
	errList = append(errList, walletID.Validate())
	if lines < 1 || lines > MaxStatementLines {
		errList = append(errList, errs.NewValueIsOutOfRangeError("lines", lines, 1, MaxStatementLines))
	}
	if err := errors.Join(errList...); err != nil {
		return GetWalletStatementQuery{}, err
	}

	return GetWalletStatementQuery{
		actor:    actor,
		walletID: walletID,
		lines:    lines,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetWalletStatementQuery) Validate() error {
	return q.guard.Validate(ErrGetWalletStatementQueryIsNotConstructed)
}

func (q GetWalletStatementQuery) Actor() kernel.Actor { return q.actor }
func (q GetWalletStatementQuery) WalletID() wallet.ID { return q.walletID }
func (q GetWalletStatementQuery) Lines() int          { return q.lines }

// authorize lets admins through and otherwise requires the caller to own the wallet.
func (q GetWalletStatementQuery) authorize() error {
	if err := q.actor.RequireAuthenticated(); err != nil {
		return err
	}
	if q.actor.IsAdmin() {
		return nil
	}
	if owner, ok := q.walletID.OwnerID(); ok && q.actor.Is(owner) {
		return nil
	}
	return errs.NewPermissionDeniedError("wallet belongs to another user")
}

// StatementLine is one ledger entry as shown on a statement.
type StatementLine struct {
	Seq            int64
	Type           string
	Amount         int64
	BalanceAfter   int64
	IdempotencyKey string
	OrderID        *kernel.UUID
	CreatedAt      time.Time
}

// GetWalletStatementQueryResponse describes a wallet. A wallet that was never credited
// has a zero statement rather than a not-found error.
type GetWalletStatementQueryResponse struct {
	WalletID      wallet.ID
	Balance       int64
	PendingPayout int64
	Available     int64
	Currency      string
	Lines         []StatementLine
}
