package order_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newMatchingOrder(t *testing.T, price int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), price, t0)
	require.NoError(t, err)
	return o
}

func newOnRouteOrder(t *testing.T, driverID kernel.UUID) *order.Order {
	t.Helper()
	o := newMatchingOrder(t, 1000)
	require.NoError(t, o.Accept(driverID, t0.Add(time.Minute)))
	require.NoError(t, o.StartTrip(t0.Add(2*time.Minute)))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("valid order starts matching", func(t *testing.T) {
		o := newMatchingOrder(t, 1000)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Matching, o.Status())
		assert.Nil(t, o.AssignedDriverID())
		assert.Equal(t, t0, o.CreatedAt())
		_, loaded := o.Loaded()
		assert.False(t, loaded)
	})

	t.Run("rejects non positive price", func(t *testing.T) {
		_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), 0, t0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "price")
	})

	t.Run("rejects missing owner and id together", func(t *testing.T) {
		_, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, 10, t0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ownerId")
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var o order.Order

		assert.Equal(t, order.ErrOrderIsNotConstructed, o.Validate())
	})
}

func TestOrder_HappyPathLifecycle(t *testing.T) {
	driverID := kernel.NewUUID()
	o := newMatchingOrder(t, 1000)

	require.NoError(t, o.Accept(driverID, t0.Add(time.Minute)))
	assert.Equal(t, order.Accepted, o.Status())
	assert.True(t, driverID.IsEqual(*o.AssignedDriverID()))
	assert.True(t, driverID.IsEqual(*o.DriverID()))
	assert.Equal(t, t0.Add(time.Minute), *o.AcceptedAt())
	assert.False(t, o.IsLocked())

	require.NoError(t, o.StartTrip(t0.Add(2*time.Minute)))
	assert.Equal(t, order.OnRoute, o.Status())
	require.True(t, o.IsLocked())
	assert.Equal(t, t0.Add(2*time.Minute), *o.LockedAt())
	assert.True(t, driverID.IsEqual(*o.LockedDriverID()))

	require.NoError(t, o.Complete(t0.Add(10*time.Minute)))
	assert.Equal(t, order.Completed, o.Status())

	settled, err := o.MarkSettled(t0.Add(11 * time.Minute))
	require.NoError(t, err)
	assert.True(t, settled)

	settled, err = o.MarkSettled(t0.Add(12 * time.Minute))
	require.NoError(t, err)
	assert.False(t, settled)
	assert.Equal(t, t0.Add(11*time.Minute), *o.SettledAt())
}

func TestOrder_CompleteFromMatchingIsRejected(t *testing.T) {
	o := newMatchingOrder(t, 1000)

	err := o.Complete(t0)

	assert.Equal(t, errs.CodeFailedPrecondition, errs.CodeOf(err))
	assert.Equal(t, order.Matching, o.Status())
}

func TestOrder_StartTripRequiresDriver(t *testing.T) {
	o := newMatchingOrder(t, 1000)

	assert.Equal(t, order.ErrDriverIsRequired, o.StartTrip(t0))
}

func TestOrder_TerminalOrdersAreImmutable(t *testing.T) {
	o := newMatchingOrder(t, 1000)
	require.NoError(t, o.Cancel(order.CancelledByClient, "changed my mind", t0))

	assert.Error(t, o.Accept(kernel.NewUUID(), t0))
	assert.Error(t, o.Expire(t0))
	assert.Error(t, o.Cancel(order.CancelledByAdmin, "", t0))
	assert.Equal(t, "changed my mind", o.CancellationReason())
}

func TestOrder_CancelRejectsNonCancellationStatus(t *testing.T) {
	o := newMatchingOrder(t, 1000)

	err := o.Cancel(order.Completed, "", t0)

	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestOrder_RevertAcceptance_ScopesMarkerToDriver(t *testing.T) {
	driverA := kernel.NewUUID()
	driverB := kernel.NewUUID()
	o := newMatchingOrder(t, 1000)
	require.NoError(t, o.Accept(driverA, t0))

	require.NoError(t, o.RevertAcceptance(t0.Add(time.Second)))

	assert.Equal(t, order.Matching, o.Status())
	assert.Nil(t, o.AssignedDriverID())
	assert.Nil(t, o.DriverID())
	assert.Nil(t, o.AcceptedAt())
	guard := o.BalanceGuard()
	require.NotNil(t, guard)
	assert.False(t, guard.Passed)
	assert.True(t, guard.AppliesTo(driverA))
	assert.False(t, guard.AppliesTo(driverB))

	require.NoError(t, o.Accept(driverB, t0.Add(time.Minute)))
	assert.False(t, o.BalanceGuard().AppliesTo(driverB))
}

func TestOrder_RevertAcceptance_OnlyFromAccepted(t *testing.T) {
	o := newMatchingOrder(t, 1000)

	assert.Error(t, o.RevertAcceptance(t0))
}

func TestOrder_RevertTripStart_BoundedLoop(t *testing.T) {
	o := newOnRouteOrder(t, kernel.NewUUID())

	for i := 1; i <= order.DefaultRevertCeiling; i++ {
		decision, err := o.RevertTripStart(t0.Add(time.Duration(i) * time.Minute))
		require.NoError(t, err)
		assert.Equal(t, order.RevertAgain, decision)
		assert.Equal(t, order.Accepted, o.Status())
		assert.Nil(t, o.StartedAt())
		assert.Equal(t, i, o.RevertBudget().Count())
		assert.True(t, o.IsLocked(), "lock survives the revert")

		require.NoError(t, o.StartTrip(t0.Add(time.Duration(i)*time.Minute+time.Second)))
	}

	decision, err := o.RevertTripStart(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, order.ForceCancel, decision)
	assert.Equal(t, order.Cancelled, o.Status())
	assert.Equal(t, order.ForceCancelReason, o.CancellationReason())
	assert.True(t, o.Status().IsTerminal())
}

func TestOrder_Reassign(t *testing.T) {
	t.Run("carries the lock to the new driver", func(t *testing.T) {
		driverA := kernel.NewUUID()
		driverB := kernel.NewUUID()
		o := newOnRouteOrder(t, driverA)

		require.NoError(t, o.Reassign(driverB, t0.Add(time.Hour)))

		assert.True(t, driverB.IsEqual(*o.AssignedDriverID()))
		assert.True(t, driverB.IsEqual(*o.DriverID()))
		assert.True(t, driverB.IsEqual(*o.LockedDriverID()))
	})

	t.Run("rejects matching orders", func(t *testing.T) {
		o := newMatchingOrder(t, 1000)

		assert.Equal(t, errs.CodeFailedPrecondition, errs.CodeOf(o.Reassign(kernel.NewUUID(), t0)))
	})

	t.Run("rejects same driver", func(t *testing.T) {
		driverA := kernel.NewUUID()
		o := newOnRouteOrder(t, driverA)

		assert.Error(t, o.Reassign(driverA, t0))
	})
}

func TestOrder_RestoreDriver_MovesLockBack(t *testing.T) {
	original, intruder := kernel.NewUUID(), kernel.NewUUID()
	o := newOnRouteOrder(t, original)
	require.NoError(t, o.Reassign(intruder, t0.Add(3*time.Minute)))

	o.RestoreDriver(original, t0.Add(4*time.Minute))

	assert.True(t, o.AssignedDriverID().IsEqual(original))
	assert.True(t, o.DriverID().IsEqual(original))
	assert.True(t, o.LockedDriverID().IsEqual(original))
	assert.Equal(t, order.OnRoute, o.Status())
}

func TestOrder_IsStale(t *testing.T) {
	o := newMatchingOrder(t, 1000)

	assert.False(t, o.IsStale(t0.Add(5*time.Minute), 10*time.Minute))
	assert.True(t, o.IsStale(t0.Add(11*time.Minute), 10*time.Minute))

	require.NoError(t, o.Accept(kernel.NewUUID(), t0.Add(time.Minute)))
	assert.False(t, o.IsStale(t0.Add(time.Hour), 10*time.Minute))
}

func TestRestoreOrder(t *testing.T) {
	t.Run("keeps the loaded snapshot until synced", func(t *testing.T) {
		driverID := kernel.NewUUID()
		s := newOnRouteOrder(t, driverID).Snapshot()
		s.Version = 4

		o, err := order.RestoreOrder(s)
		require.NoError(t, err)
		require.NoError(t, o.Complete(t0.Add(time.Hour)))

		before, ok := o.Loaded()
		require.True(t, ok)
		assert.Equal(t, order.OnRoute, before.Status)
		assert.Equal(t, order.Completed, o.Snapshot().Status)

		o.SyncPersisted(5)
		before, _ = o.Loaded()
		assert.Equal(t, order.Completed, before.Status)
		assert.Equal(t, int64(5), o.Version())
	})

	t.Run("rejects accepted order without driver", func(t *testing.T) {
		s := newMatchingOrder(t, 1000).Snapshot()
		s.Status = order.Accepted

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("loads locked order whose driver was cleared", func(t *testing.T) {
		driverID := kernel.NewUUID()
		s := newOnRouteOrder(t, driverID).Snapshot()
		s.AssignedDriverID = nil
		s.DriverID = nil

		o, err := order.RestoreOrder(s)

		require.NoError(t, err)
		assert.Nil(t, o.AssignedDriverID())
		assert.True(t, kernel.SameUUID(o.LockedDriverID(), &driverID))
	})
}

func TestSnapshot_CloneSharesNothing(t *testing.T) {
	driverID := kernel.NewUUID()
	o := newOnRouteOrder(t, driverID)

	snap := o.Snapshot()
	other := kernel.NewUUID()
	*snap.AssignedDriverID = other
	*snap.LockedAt = t0.Add(100 * time.Hour)

	assert.True(t, driverID.IsEqual(*o.AssignedDriverID()))
	assert.Equal(t, t0.Add(2*time.Minute), *o.LockedAt())
}
