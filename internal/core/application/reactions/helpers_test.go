package reactions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
)

func newMatching(t *testing.T, price int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), price, fixedNow)
	require.NoError(t, err)
	o.SyncPersisted(1)
	return o
}

// advance applies mutate to o and returns the change the write produced.
func advance(t *testing.T, o *order.Order, mutate func(o *order.Order) error) events.OrderChange {
	t.Helper()
	before := o.Snapshot()
	require.NoError(t, mutate(o))
	o.SyncPersisted(before.Version + 1)
	return events.NewOrderChange(&before, o.Snapshot())
}

// restoreAt rebuilds an independent copy of o, as a repository read would.
func restoreAt(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	c, err := order.RestoreOrder(o.Snapshot())
	require.NoError(t, err)
	return c
}

func walletWith(t *testing.T, id wallet.ID, balance int64) *wallet.Wallet {
	t.Helper()
	w, err := wallet.RestoreWallet(id, balance, balance, 0, 0, wallet.Currency, fixedNow, fixedNow)
	require.NoError(t, err)
	return w
}
