package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/guard"
)

var ErrValidateLedgerQueryIsNotConstructed = errors.New(
	"ValidateLedgerQuery must be created via NewValidateLedgerQuery constructor",
)

// ValidateLedgerQuery replays one wallet's ledger and compares it with the stored balance.
type ValidateLedgerQuery struct {
	actor    kernel.Actor
	walletID wallet.ID

	guard guard.ConstructorGuard
}

func NewValidateLedgerQuery(actor kernel.Actor, walletID wallet.ID) (ValidateLedgerQuery, error) {
	if err := walletID.Validate(); err != nil {
		return ValidateLedgerQuery{}, err
	}
	return ValidateLedgerQuery{actor: actor, walletID: walletID, guard: guard.NewConstructorGuard()}, nil
}

func (q ValidateLedgerQuery) Validate() error {
	return q.guard.Validate(ErrValidateLedgerQueryIsNotConstructed)
}

func (q ValidateLedgerQuery) Actor() kernel.Actor { return q.actor }
func (q ValidateLedgerQuery) WalletID() wallet.ID { return q.walletID }
