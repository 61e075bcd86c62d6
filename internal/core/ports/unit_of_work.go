package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request, change delivery
// or sweep item. This ensures isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is the explicit store handle of one transaction. Repositories obtained
// from it after Begin share that transaction; before Begin they run in autocommit.
type UnitOfWork interface {
	// Begin starts a new database transaction. Calling it twice is a no-op.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	WalletRepository() WalletRepository
	LedgerRepository() LedgerRepository
	PayoutRepository() PayoutRepository
	TopupRepository() TopupRepository
	AuditRepository() AuditRepository
	OutboxRepository() OutboxRepository
	LocationRepository() LocationRepository
}
