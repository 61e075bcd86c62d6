package settlement_test

import (
	"context"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type MockWalletRepository struct{ mock.Mock }

func (m *MockWalletRepository) Add(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}
func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	return m.Called(ctx, w).Error(0)
}
func (m *MockWalletRepository) Get(ctx context.Context, id wallet.ID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*wallet.Wallet)
	return w, args.Error(1)
}
func (m *MockWalletRepository) GetForUpdate(ctx context.Context, id wallet.ID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(*wallet.Wallet)
	return w, args.Error(1)
}
func (m *MockWalletRepository) ListIDs(ctx context.Context) ([]wallet.ID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]wallet.ID)
	return ids, args.Error(1)
}

type MockLedgerRepository struct{ mock.Mock }

func (m *MockLedgerRepository) Add(ctx context.Context, e *ledger.Entry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *MockLedgerRepository) FindByKey(ctx context.Context, id wallet.ID, key ledger.Key) (*ledger.Entry, error) {
	args := m.Called(ctx, id, key)
	e, _ := args.Get(0).(*ledger.Entry)
	return e, args.Error(1)
}
func (m *MockLedgerRepository) FindByKeyAndType(ctx context.Context, key ledger.Key, entryType ledger.EntryType) (*ledger.Entry, error) {
	args := m.Called(ctx, key, entryType)
	e, _ := args.Get(0).(*ledger.Entry)
	return e, args.Error(1)
}
func (m *MockLedgerRepository) ListByWallet(ctx context.Context, id wallet.ID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, id)
	entries, _ := args.Get(0).([]*ledger.Entry)
	return entries, args.Error(1)
}

type mockStore struct {
	wallets *MockWalletRepository
	ledger  *MockLedgerRepository
}

func (s mockStore) WalletRepository() ports.WalletRepository { return s.wallets }
func (s mockStore) LedgerRepository() ports.LedgerRepository { return s.ledger }

// memStore keeps wallets and entries in memory for engine level tests.
type memStore struct {
	mu      sync.Mutex
	wallets map[wallet.ID]*wallet.Wallet
	entries []*ledger.Entry
}

func newMemStore() *memStore {
	return &memStore{wallets: map[wallet.ID]*wallet.Wallet{}}
}

func (s *memStore) WalletRepository() ports.WalletRepository { return memWallets{s} }
func (s *memStore) LedgerRepository() ports.LedgerRepository { return memLedger{s} }

func (s *memStore) seed(id wallet.ID, balance int64) {
	w, _ := wallet.RestoreWallet(id, balance, balance, 0, 0, wallet.Currency, fixedNow, fixedNow)
	s.wallets[id] = w
}

func (s *memStore) balance(id wallet.ID) int64 {
	w, ok := s.wallets[id]
	if !ok {
		return 0
	}
	return w.Balance()
}

func (s *memStore) entriesOf(id wallet.ID) []*ledger.Entry {
	var out []*ledger.Entry
	for _, e := range s.entries {
		if e.WalletID() == id {
			out = append(out, e)
		}
	}
	return out
}

type memWallets struct{ s *memStore }

func (r memWallets) Add(_ context.Context, w *wallet.Wallet) error {
	r.s.wallets[w.ID()] = w
	return nil
}
func (r memWallets) Update(_ context.Context, w *wallet.Wallet) error {
	r.s.wallets[w.ID()] = w
	return nil
}
func (r memWallets) Get(_ context.Context, id wallet.ID) (*wallet.Wallet, error) {
	w, ok := r.s.wallets[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("walletId", id)
	}
	return w, nil
}
func (r memWallets) GetForUpdate(ctx context.Context, id wallet.ID) (*wallet.Wallet, error) {
	return r.Get(ctx, id)
}
func (r memWallets) ListIDs(_ context.Context) ([]wallet.ID, error) {
	ids := make([]wallet.ID, 0, len(r.s.wallets))
	for id := range r.s.wallets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memLedger struct{ s *memStore }

func (r memLedger) Add(_ context.Context, e *ledger.Entry) error {
	for _, existing := range r.s.entries {
		if existing.WalletID() == e.WalletID() && existing.Key() == e.Key() {
			return errs.NewTransientError(errs.NewFailedPreconditionError("duplicate ledger key"))
		}
	}
	r.s.entries = append(r.s.entries, e)
	return nil
}
func (r memLedger) FindByKey(_ context.Context, id wallet.ID, key ledger.Key) (*ledger.Entry, error) {
	for _, e := range r.s.entries {
		if e.WalletID() == id && e.Key() == key {
			return e, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("idempotencyKey", key)
}
func (r memLedger) FindByKeyAndType(_ context.Context, key ledger.Key, entryType ledger.EntryType) (*ledger.Entry, error) {
	for _, e := range r.s.entries {
		if e.Key() == key && e.Type() == entryType {
			return e, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("idempotencyKey", key)
}
func (r memLedger) ListByWallet(_ context.Context, id wallet.ID) ([]*ledger.Entry, error) {
	return r.s.entriesOf(id), nil
}
