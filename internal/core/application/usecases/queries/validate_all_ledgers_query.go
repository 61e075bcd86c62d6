package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/pkg/guard"
)

var ErrValidateAllLedgersQueryIsNotConstructed = errors.New(
	"ValidateAllLedgersQuery must be created via NewValidateAllLedgersQuery constructor",
)

// ValidateAllLedgersQuery audits every wallet. It is issued by the audit job, not by users.
type ValidateAllLedgersQuery struct {
	guard guard.ConstructorGuard
}

func NewValidateAllLedgersQuery() ValidateAllLedgersQuery {
	return ValidateAllLedgersQuery{guard: guard.NewConstructorGuard()}
}

func (q ValidateAllLedgersQuery) Validate() error {
	return q.guard.Validate(ErrValidateAllLedgersQueryIsNotConstructed)
}

// ValidateAllLedgersResponse lists the wallets that failed the audit.
type ValidateAllLedgersResponse struct {
	Checked int
	Invalid []ledger.Report
}
