package settlement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/settlement"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"
)

var fixedNow = time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

func newMockStore() mockStore {
	return mockStore{wallets: new(MockWalletRepository), ledger: new(MockLedgerRepository)}
}

func restoredWallet(t *testing.T, id wallet.ID, balance int64) *wallet.Wallet {
	t.Helper()
	w, err := wallet.RestoreWallet(id, balance, balance, 0, 0, wallet.Currency, fixedNow, fixedNow)
	require.NoError(t, err)
	return w
}

func TestWalletAccessor_Apply_Debit(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())
	key := ledger.Key("order-1_start_fee")
	w := restoredWallet(t, id, 500)

	mock.InOrder(
		store.wallets.On("GetForUpdate", ctx, id).Return(w, nil).Once(),
		store.ledger.On("FindByKey", ctx, id, key).Return(nil, errs.NewObjectNotFoundError("idempotencyKey", key)).Once(),
		store.wallets.On("Update", ctx, w).Return(nil).Once(),
		store.ledger.On("Add", ctx, mock.MatchedBy(func(e *ledger.Entry) bool {
			return e.Amount() == -100 && e.BalanceBefore() == 500 && e.BalanceAfter() == 400 && e.Key() == key
		})).Return(nil).Once(),
	)

	res, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: -100, Type: ledger.TripStartFee, Key: key,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(500), res.BalanceBefore)
	assert.Equal(t, int64(400), res.BalanceAfter)
	assert.False(t, res.AlreadyApplied)
	assert.Equal(t, int64(400), w.Balance())
	assert.Equal(t, int64(100), w.TotalDebited())
	store.wallets.AssertExpectations(t)
	store.ledger.AssertExpectations(t)
}

func TestWalletAccessor_Apply_KeyAlreadyApplied(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())
	key := ledger.Key("order-1_start_fee")
	w := restoredWallet(t, id, 400)
	existing, err := ledger.RestoreEntry(kernel.NewUUID(), 7, ledger.Movement{
		WalletID: id, Key: key, Type: ledger.TripStartFee, Amount: -100, BalanceBefore: 500, BalanceAfter: 400,
	}, fixedNow)
	require.NoError(t, err)

	store.wallets.On("GetForUpdate", ctx, id).Return(w, nil).Once()
	store.ledger.On("FindByKey", ctx, id, key).Return(existing, nil).Once()

	res, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: -100, Type: ledger.TripStartFee, Key: key,
	})

	require.NoError(t, err)
	assert.True(t, res.AlreadyApplied)
	assert.True(t, existing.ID().IsEqual(res.EntryID))
	assert.Equal(t, int64(400), w.Balance())
	store.wallets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	store.ledger.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestWalletAccessor_Apply_InsufficientBalance(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())
	w := restoredWallet(t, id, 50)

	store.wallets.On("GetForUpdate", ctx, id).Return(w, nil).Once()
	store.ledger.On("FindByKey", ctx, id, ledger.Key("k")).Return(nil, errs.NewObjectNotFoundError("idempotencyKey", "k")).Once()

	_, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: -100, Type: ledger.TripStartFee, Key: "k",
	})

	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	assert.Equal(t, errs.CodeFailedPrecondition, errs.CodeOf(err))
	assert.Equal(t, int64(50), w.Balance())
	store.wallets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWalletAccessor_Apply_OpensWalletOnCredit(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())

	store.wallets.On("GetForUpdate", ctx, id).Return(nil, errs.NewObjectNotFoundError("walletId", id)).Once()
	store.wallets.On("Add", ctx, mock.AnythingOfType("*wallet.Wallet")).Return(nil).Once()
	store.ledger.On("FindByKey", ctx, id, ledger.Key("topup_1")).Return(nil, errs.NewObjectNotFoundError("idempotencyKey", "topup_1")).Once()
	store.wallets.On("Update", ctx, mock.AnythingOfType("*wallet.Wallet")).Return(nil).Once()
	store.ledger.On("Add", ctx, mock.AnythingOfType("*ledger.Entry")).Return(nil).Once()

	res, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: 5000, Type: ledger.Topup, Key: "topup_1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), res.BalanceBefore)
	assert.Equal(t, int64(5000), res.BalanceAfter)
	store.wallets.AssertExpectations(t)
}

func TestWalletAccessor_Apply_DebitOfMissingWallet(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())

	store.wallets.On("GetForUpdate", ctx, id).Return(nil, errs.NewObjectNotFoundError("walletId", id)).Once()

	_, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: -10, Type: ledger.Adjustment, Key: "adj",
	})

	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	store.wallets.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestWalletAccessor_Apply_RejectsInvalidDelta(t *testing.T) {
	store := newMockStore()
	accessor := settlement.NewWalletAccessor(fixedClock{})
	id := wallet.DriverWalletID(kernel.NewUUID())

	_, err := accessor.Apply(t.Context(), store, settlement.Delta{WalletID: id, Amount: 0, Type: ledger.Adjustment, Key: "k"})
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = accessor.Apply(t.Context(), store, settlement.Delta{WalletID: id, Amount: 5, Type: ledger.Adjustment})
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = accessor.Apply(t.Context(), store, settlement.Delta{WalletID: "", Amount: 5, Type: ledger.Adjustment, Key: "k"})
	assert.Error(t, err)

	store.wallets.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestWalletAccessor_Apply_StoreErrorIsPropagated(t *testing.T) {
	ctx := t.Context()
	store := newMockStore()
	id := wallet.DriverWalletID(kernel.NewUUID())
	storeErr := errors.New("connection reset")

	store.wallets.On("GetForUpdate", ctx, id).Return(nil, storeErr).Once()

	_, err := settlement.NewWalletAccessor(fixedClock{}).Apply(ctx, store, settlement.Delta{
		WalletID: id, Amount: 10, Type: ledger.Adjustment, Key: "k",
	})

	assert.ErrorIs(t, err, storeErr)
	assert.True(t, errs.IsRetryable(err))
}

func TestWalletAccessor_ReserveAndRelease(t *testing.T) {
	store := newMemStore()
	id := wallet.DriverWalletID(kernel.NewUUID())
	store.seed(id, 20_000)
	accessor := settlement.NewWalletAccessor(fixedClock{})

	require.NoError(t, accessor.Reserve(t.Context(), store, id, 15_000))
	err := accessor.Reserve(t.Context(), store, id, 10_000)
	assert.ErrorIs(t, err, wallet.ErrInsufficientAvailableBalance)

	require.NoError(t, accessor.ReleaseReservation(t.Context(), store, id, 15_000))
	assert.Equal(t, int64(0), store.wallets[id].PendingPayout())
	assert.Equal(t, int64(20_000), store.balance(id))
}
