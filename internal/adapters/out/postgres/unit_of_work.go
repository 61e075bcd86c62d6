// Package postgres provides the GORM-based Unit of Work over the dispatch schema.
//
// A unit of work owns at most one transaction. Repositories obtained after Begin run
// inside it; repositories obtained before Begin run in autocommit. Every order write
// appends its change to the outbox through the same handle, so the change and the write
// commit or roll back together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	...
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Row locks taken by GetForUpdate are held until Commit or Rollback
package postgres

import (
	"context"

	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/ledgerrepo"
	"dispatch/internal/adapters/out/postgres/locationrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/outboxrepo"
	"dispatch/internal/adapters/out/postgres/payoutrepo"
	"dispatch/internal/adapters/out/postgres/pgerr"
	"dispatch/internal/adapters/out/postgres/profilerepo"
	"dispatch/internal/adapters/out/postgres/topuprepo"
	"dispatch/internal/adapters/out/postgres/walletrepo"
	"dispatch/internal/core/ports"
)

// Models lists every table of the schema in dependency order.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&outboxrepo.OrderChangeDTO{},
		&walletrepo.WalletDTO{},
		&ledgerrepo.EntryDTO{},
		&payoutrepo.PayoutDTO{},
		&topuprepo.RequestDTO{},
		&auditrepo.AdminActionDTO{},
		&auditrepo.SecurityAlertDTO{},
		&locationrepo.DriverLocationDTO{},
		&profilerepo.ProfileDTO{},
		&profilerepo.NotificationDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across the repositories.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin starts the transaction. Multiple calls on the same instance are safe and will
// not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerr.Wrap(tx.Error)
	}

	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. A serialization failure surfaces as transient so
// the caller retries the whole unit.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerr.Wrap(err)
}

// Rollback discards the transaction. Handlers defer it unconditionally, so calling it
// after Commit returns gorm.ErrInvalidTransaction, which they ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	db := uow.conn()
	return orderrepo.NewGormOrderRepository(db, outboxrepo.NewGormOutboxRepository(db))
}

func (uow *GormUnitOfWork) WalletRepository() ports.WalletRepository {
	return walletrepo.NewGormWalletRepository(uow.conn())
}

func (uow *GormUnitOfWork) LedgerRepository() ports.LedgerRepository {
	return ledgerrepo.NewGormLedgerRepository(uow.conn())
}

func (uow *GormUnitOfWork) PayoutRepository() ports.PayoutRepository {
	return payoutrepo.NewGormPayoutRepository(uow.conn())
}

func (uow *GormUnitOfWork) TopupRepository() ports.TopupRepository {
	return topuprepo.NewGormTopupRepository(uow.conn())
}

func (uow *GormUnitOfWork) AuditRepository() ports.AuditRepository {
	return auditrepo.NewGormAuditRepository(uow.conn())
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

func (uow *GormUnitOfWork) LocationRepository() ports.LocationRepository {
	return locationrepo.NewGormLocationRepository(uow.conn())
}
