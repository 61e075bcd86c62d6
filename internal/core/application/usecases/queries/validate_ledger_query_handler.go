package queries

import (
	"context"

	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
)

// ValidateLedgerQueryHandler serves the per-wallet audit to admins.
type ValidateLedgerQueryHandler struct {
	readerFactory LedgerReaderFactory
}

func NewValidateLedgerQueryHandler(readerFactory LedgerReaderFactory) ValidateLedgerQueryHandler {
	return ValidateLedgerQueryHandler{readerFactory: readerFactory}
}

func (h ValidateLedgerQueryHandler) Handle(ctx context.Context, query ValidateLedgerQuery) (ledger.Report, error) {
	if err := query.Validate(); err != nil {
		return ledger.Report{}, err
	}
	if err := query.Actor().RequireAdmin(); err != nil {
		return ledger.Report{}, err
	}
	return replayWallet(ctx, h.readerFactory, query.WalletID())
}

// replayWallet reads the wallet and its entries in one transaction. The wallet row lock
// keeps a concurrent movement from landing between the two reads.
func replayWallet(ctx context.Context, factory LedgerReaderFactory, id wallet.ID) (ledger.Report, error) {
	reader := factory.Create()
	if err := reader.Begin(ctx); err != nil {
		return ledger.Report{}, err
	}

	defer func() {
		_ = reader.Rollback(ctx)
	}()

	w, err := reader.WalletRepository().GetForUpdate(ctx, id)
	if err != nil {
		return ledger.Report{}, err
	}
	entries, err := reader.LedgerRepository().ListByWallet(ctx, id)
	if err != nil {
		return ledger.Report{}, err
	}

	return ledger.Replay(id, w.Balance(), entries), nil
}
