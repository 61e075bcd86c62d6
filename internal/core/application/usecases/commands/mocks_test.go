package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/payout"
	"dispatch/internal/core/domain/model/topup"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
)

var fixedNow = time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustActor(isAdmin bool) kernel.Actor {
	a, err := kernel.NewActor(kernel.NewUUID(), isAdmin)
	if err != nil {
		panic(err)
	}
	return a
}

// MockUoW implements every narrowed unit of work.
type MockUoW struct {
	mock.Mock
	orders    *MockOrderRepository
	wallets   *MockWalletRepository
	ledger    *MockLedgerRepository
	payouts   *MockPayoutRepository
	topups    *MockTopupRepository
	audit     *MockAuditRepository
	outbox    *MockOutboxRepository
	locations *MockLocationRepository
}

func newMockUoW() *MockUoW {
	return &MockUoW{
		orders:    new(MockOrderRepository),
		wallets:   new(MockWalletRepository),
		ledger:    new(MockLedgerRepository),
		payouts:   new(MockPayoutRepository),
		topups:    new(MockTopupRepository),
		audit:     new(MockAuditRepository),
		outbox:    new(MockOutboxRepository),
		locations: new(MockLocationRepository),
	}
}

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) OrderRepository() ports.OrderRepository       { return m.orders }
func (m *MockUoW) WalletRepository() ports.WalletRepository     { return m.wallets }
func (m *MockUoW) LedgerRepository() ports.LedgerRepository     { return m.ledger }
func (m *MockUoW) PayoutRepository() ports.PayoutRepository     { return m.payouts }
func (m *MockUoW) TopupRepository() ports.TopupRepository       { return m.topups }
func (m *MockUoW) AuditRepository() ports.AuditRepository       { return m.audit }
func (m *MockUoW) OutboxRepository() ports.OutboxRepository     { return m.outbox }
func (m *MockUoW) LocationRepository() ports.LocationRepository { return m.locations }

// expectTx registers a transaction that begins and either commits or only rolls back.
func (m *MockUoW) expectTx(commit bool) {
	m.On("Begin", mock.Anything).Return(nil).Once()
	if commit {
		m.On("Commit", mock.Anything).Return(nil).Once()
	}
	m.On("Rollback", mock.Anything).Return(nil).Maybe()
}

type (
	orderFactory    struct{ uow *MockUoW }
	walletFactory   struct{ uow *MockUoW }
	payoutFactory   struct{ uow *MockUoW }
	topupFactory    struct{ uow *MockUoW }
	outboxFactory   struct{ uow *MockUoW }
	locationFactory struct{ uow *MockUoW }
)

func (f orderFactory) Create() commands.OrderUoW       { return f.uow }
func (f walletFactory) Create() commands.WalletUoW     { return f.uow }
func (f payoutFactory) Create() commands.PayoutUoW     { return f.uow }
func (f topupFactory) Create() commands.TopupUoW       { return f.uow }
func (f outboxFactory) Create() commands.OutboxUoW     { return f.uow }
func (f locationFactory) Create() commands.LocationUoW { return f.uow }

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

type MockPayoutRepository struct{ mock.Mock }

func (m *MockPayoutRepository) Add(ctx context.Context, p *payout.Payout) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockPayoutRepository) Update(ctx context.Context, p *payout.Payout) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockPayoutRepository) Get(ctx context.Context, id kernel.UUID) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*payout.Payout)
	return p, args.Error(1)
}
func (m *MockPayoutRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*payout.Payout)
	return p, args.Error(1)
}

type MockTopupRepository struct{ mock.Mock }

func (m *MockTopupRepository) Add(ctx context.Context, r *topup.Request) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockTopupRepository) Update(ctx context.Context, r *topup.Request) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockTopupRepository) Get(ctx context.Context, id kernel.UUID) (*topup.Request, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*topup.Request)
	return r, args.Error(1)
}
func (m *MockTopupRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*topup.Request, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*topup.Request)
	return r, args.Error(1)
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

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) ListUnpublished(ctx context.Context, limit int) ([]ports.OrderChangeRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]ports.OrderChangeRecord)
	return records, args.Error(1)
}
func (m *MockOutboxRepository) MarkPublished(ctx context.Context, seqs []int64, at time.Time) error {
	return m.Called(ctx, seqs, at).Error(0)
}

type MockLocationRepository struct{ mock.Mock }

func (m *MockLocationRepository) Upsert(ctx context.Context, driverID kernel.UUID, lat, lng float64, at time.Time) error {
	return m.Called(ctx, driverID, lat, lng, at).Error(0)
}
func (m *MockLocationRepository) DeleteStale(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).(int64), args.Error(1)
}

type MockProfileRepository struct{ mock.Mock }

func (m *MockProfileRepository) Get(ctx context.Context, userID kernel.UUID) (ports.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ports.Profile), args.Error(1)
}
func (m *MockProfileRepository) ClearPushToken(ctx context.Context, userID kernel.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockChangePublisher struct{ mock.Mock }

func (m *MockChangePublisher) Publish(ctx context.Context, records []ports.OrderChangeRecord) error {
	return m.Called(ctx, records).Error(0)
}
