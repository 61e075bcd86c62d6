package reactions_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
)

var fixedNow = time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockUnitOfWork struct {
	mock.Mock
	orders  *MockOrderRepository
	wallets *MockWalletRepository
	ledger  *MockLedgerRepository
	audit   *MockAuditRepository
}

func newMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		orders:  new(MockOrderRepository),
		wallets: new(MockWalletRepository),
		ledger:  new(MockLedgerRepository),
		audit:   new(MockAuditRepository),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUnitOfWork) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUnitOfWork) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUnitOfWork) OrderRepository() ports.OrderRepository       { return m.orders }
func (m *MockUnitOfWork) WalletRepository() ports.WalletRepository     { return m.wallets }
func (m *MockUnitOfWork) LedgerRepository() ports.LedgerRepository     { return m.ledger }
func (m *MockUnitOfWork) AuditRepository() ports.AuditRepository       { return m.audit }
func (m *MockUnitOfWork) PayoutRepository() ports.PayoutRepository     { return nil }
func (m *MockUnitOfWork) TopupRepository() ports.TopupRepository       { return nil }
func (m *MockUnitOfWork) OutboxRepository() ports.OutboxRepository     { return nil }
func (m *MockUnitOfWork) LocationRepository() ports.LocationRepository { return nil }

// expectTx registers a transaction that begins and either commits or only rolls back.
func (m *MockUnitOfWork) expectTx(commit bool) {
	m.On("Begin", mock.Anything).Return(nil).Once()
	if commit {
		m.On("Commit", mock.Anything).Return(nil).Once()
	}
	m.On("Rollback", mock.Anything).Return(nil).Maybe()
}

type MockUnitOfWorkFactory struct{ mock.Mock }

func (m *MockUnitOfWorkFactory) Create() ports.UnitOfWork {
	return m.Called().Get(0).(ports.UnitOfWork)
}

func factoryFor(uow *MockUnitOfWork) *MockUnitOfWorkFactory {
	f := new(MockUnitOfWorkFactory)
	f.On("Create").Return(uow)
	return f
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}
func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}
func (m *MockOrderRepository) ListStaleMatching(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	ids, _ := args.Get(0).([]kernel.UUID)
	return ids, args.Error(1)
}

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

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) AddAdminAction(ctx context.Context, a audit.AdminAction) error {
	return m.Called(ctx, a).Error(0)
}
func (m *MockAuditRepository) ListReassignments(ctx context.Context, orderID kernel.UUID, since time.Time) ([]audit.AdminAction, error) {
	args := m.Called(ctx, orderID, since)
	actions, _ := args.Get(0).([]audit.AdminAction)
	return actions, args.Error(1)
}
func (m *MockAuditRepository) AddSecurityAlert(ctx context.Context, a audit.SecurityAlert) error {
	return m.Called(ctx, a).Error(0)
}
func (m *MockAuditRepository) ListSecurityAlerts(ctx context.Context, orderID kernel.UUID, since time.Time) ([]audit.SecurityAlert, error) {
	args := m.Called(ctx, orderID, since)
	alerts, _ := args.Get(0).([]audit.SecurityAlert)
	return alerts, args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Push(ctx context.Context, userID kernel.UUID, dedupID string, msg ports.PushMessage) error {
	return m.Called(ctx, userID, dedupID, msg).Error(0)
}

type MockAlertPublisher struct{ mock.Mock }

func (m *MockAlertPublisher) Publish(ctx context.Context, alert audit.SecurityAlert) error {
	return m.Called(ctx, alert).Error(0)
}
