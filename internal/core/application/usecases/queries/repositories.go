// Package queries holds the read side: ledger audits and the read models served to
// admins and drivers. Audits go through the repositories so they replay exactly what the
// settlement engine wrote; read models query Postgres directly.
package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

type (
	// LedgerReader is the slice of a unit of work the ledger audit reads through.
	LedgerReader interface {
		Begin(ctx context.Context) error
		Rollback(ctx context.Context) error
		WalletRepository() ports.WalletRepository
		LedgerRepository() ports.LedgerRepository
		AuditRepository() ports.AuditRepository
	}

	LedgerReaderFactory interface {
		Create() LedgerReader
	}
)
