package ports

import (
	"context"

	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
)

// WalletRepository defines the persistence contract for wallets. Wallets are mutated
// only by the wallet accessor, which always locks the row first.
type WalletRepository interface {
	// Add persists a new wallet. Creating an existing wallet is a transient conflict.
	Add(ctx context.Context, w *wallet.Wallet) error

	// Update persists balance and totals.
	Update(ctx context.Context, w *wallet.Wallet) error

	// Get reads a wallet without locking.
	Get(ctx context.Context, id wallet.ID) (*wallet.Wallet, error)

	// GetForUpdate reads a wallet and holds its row lock until the transaction ends.
	// A missing wallet is reported as ObjectNotFoundError.
	GetForUpdate(ctx context.Context, id wallet.ID) (*wallet.Wallet, error)

	// ListIDs returns every wallet id, platform wallet included.
	ListIDs(ctx context.Context) ([]wallet.ID, error)
}

// LedgerRepository is the append-only store of ledger entries.
type LedgerRepository interface {
	// Add appends an entry. A second entry for the same (wallet, key) is rejected by the
	// store and reported as a transient conflict.
	Add(ctx context.Context, entry *ledger.Entry) error

	// FindByKey returns the entry for (wallet, key), or ObjectNotFoundError.
	FindByKey(ctx context.Context, walletID wallet.ID, key ledger.Key) (*ledger.Entry, error)

	// FindByKeyAndType returns the first entry of entryType recorded under key in any
	// wallet, or ObjectNotFoundError.
	FindByKeyAndType(ctx context.Context, key ledger.Key, entryType ledger.EntryType) (*ledger.Entry, error)

	// ListByWallet returns every entry of a wallet in creation order.
	ListByWallet(ctx context.Context, walletID wallet.ID) ([]*ledger.Entry, error)
}
