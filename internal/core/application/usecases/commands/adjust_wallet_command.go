package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAdjustWalletCommandIsNotConstructed = errors.New(
	"AdjustWalletCommand must be created via NewAdjustWalletCommand constructor",
)

// AdjustWalletCommand is a manual correction of a wallet balance. The reference makes the
// adjustment idempotent: repeating it with the same reference changes nothing.
type AdjustWalletCommand struct { //nolint:recvcheck //using for validation
	actor    kernel.Actor
	walletID wallet.ID
	amount   int64
	key      ledger.Key
	reason   string

	guard guard.ConstructorGuard
}

func NewAdjustWalletCommand(
	actor kernel.Actor,
	walletID wallet.ID,
	amount int64,
	reference, reason string,
) (AdjustWalletCommand, error) {
	var errList []error
	errList = append(errList, walletID.Validate())
	if amount == 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("amount", errors.New("must not be zero")))
	}
	key, err := ledger.NewKey("adjustment_" + strings.TrimSpace(reference))
	if strings.TrimSpace(reference) == "" {
		err = errs.NewValueIsRequiredError("reference")
	}
	errList = append(errList, err)
	if strings.TrimSpace(reason) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("reason"))
	}
	if err = errors.Join(errList...); err != nil {
		return AdjustWalletCommand{}, err
	}

	return AdjustWalletCommand{
		actor:    actor,
		walletID: walletID,
		amount:   amount,
		key:      key,
		reason:   reason,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AdjustWalletCommand) Validate() error {
	return c.guard.Validate(ErrAdjustWalletCommandIsNotConstructed)
}

func (c AdjustWalletCommand) Actor() kernel.Actor { return c.actor }
func (c AdjustWalletCommand) WalletID() wallet.ID { return c.walletID }
func (c AdjustWalletCommand) Amount() int64       { return c.amount }
func (c AdjustWalletCommand) Key() ledger.Key     { return c.key }
func (c AdjustWalletCommand) Reason() string      { return c.reason }
