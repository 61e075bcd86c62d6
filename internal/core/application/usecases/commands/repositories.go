// Package commands contains the operations that change marketplace state: order
// lifecycle moves, admin corrections, payout and top-up workflows and the periodic
// sweeps. Every handler validates its command, opens a unit of work, locks what it
// mutates and commits once.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrow ports.UnitOfWork to what each handler touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	WalletRepoFactory interface {
		WalletRepository() ports.WalletRepository
	}

	LedgerRepoFactory interface {
		LedgerRepository() ports.LedgerRepository
	}

	PayoutRepoFactory interface {
		PayoutRepository() ports.PayoutRepository
	}

	TopupRepoFactory interface {
		TopupRepository() ports.TopupRepository
	}

	AuditRepoFactory interface {
		AuditRepository() ports.AuditRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	LocationRepoFactory interface {
		LocationRepository() ports.LocationRepository
	}

	// OrderUoW covers order writes and the admin actions recorded next to them.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		AuditRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// WalletUoW covers ledger movements. It satisfies settlement.LedgerStore.
	WalletUoW interface {
		TxManager
		WalletRepoFactory
		LedgerRepoFactory
		AuditRepoFactory
	}

	WalletUoWFactory interface {
		Create() WalletUoW
	}

	// PayoutUoW manages a payout together with the driver wallet it draws from.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   p, err := uow.PayoutRepository().GetForUpdate(ctx, id)
	//   res, err := accessor.Apply(ctx, uow, delta)
	//   // ... update payout, record admin action
	//
	//   err = uow.Commit(ctx)
	PayoutUoW interface {
		WalletUoW
		PayoutRepoFactory
	}

	PayoutUoWFactory interface {
		Create() PayoutUoW
	}

	TopupUoW interface {
		WalletUoW
		TopupRepoFactory
	}

	TopupUoWFactory interface {
		Create() TopupUoW
	}

	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}

	LocationUoW interface {
		TxManager
		LocationRepoFactory
	}

	LocationUoWFactory interface {
		Create() LocationUoW
	}
)
