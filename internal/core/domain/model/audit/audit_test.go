package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

func TestNewAdminAction_Validates(t *testing.T) {
	_, err := NewAdminAction("dropTable", kernel.NewUUID(), Target{}, "", time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = NewAdminAction(ActionCancelOrder, kernel.UUID{}, Target{}, "", time.Now())
	assert.Error(t, err)
}

func TestAdminAction_Grant(t *testing.T) {
	now := time.Now()
	orderID, driverID := kernel.NewUUID(), kernel.NewUUID()
	action, err := NewAdminAction(ActionReassignOrder, kernel.NewUUID(),
		Target{OrderID: &orderID, DriverID: &driverID}, "", now.Add(-30*time.Second))
	require.NoError(t, err)

	grant, ok := action.Grant()
	require.True(t, ok)
	assert.True(t, grant.Covers(orderID, driverID, now, time.Minute))
	assert.False(t, grant.Covers(orderID, driverID, now.Add(45*time.Second), time.Minute))
	assert.False(t, grant.Covers(orderID, kernel.NewUUID(), now, time.Minute))
	assert.False(t, grant.Covers(kernel.NewUUID(), driverID, now, time.Minute))

	cancel, err := NewAdminAction(ActionCancelOrder, kernel.NewUUID(),
		Target{OrderID: &orderID, DriverID: &driverID}, "", now)
	require.NoError(t, err)
	_, ok = cancel.Grant()
	assert.False(t, ok)
}

func TestSecurityAlert_Grant(t *testing.T) {
	now := time.Now()
	orderID, attempted, restored := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	alert := NewUnauthorizedReassignment(orderID, &attempted, restored, now)
	assert.Equal(t, SeverityCritical, alert.Severity)

	grant, ok := alert.Grant()
	require.True(t, ok)
	assert.True(t, grant.Covers(orderID, restored, now, time.Minute))
	assert.False(t, grant.Covers(orderID, attempted, now, time.Minute))

	_, ok = NewLedgerDiscrepancy("platform_main", 10, 12, 1, now).Grant()
	assert.False(t, ok)
}

func TestAlerts(t *testing.T) {
	now := time.Now()

	l := NewLedgerDiscrepancy("platform_main", 10, 12, 1, now)
	assert.Equal(t, "12", l.Details["computedBalance"])

	d := NewDeliveryExhausted("evt-1", kernel.NewUUID(), errors.New("boom"), now)
	assert.Equal(t, "boom", d.Details["error"])
	assert.Equal(t, AlertDeliveryExhausted, d.Kind)

	orderID := kernel.NewUUID()
	u := NewTripStartFeeUnpaid(orderID, "driver_42", 100, "completed", errors.New("insufficient"), now)
	assert.Equal(t, AlertTripStartFeeUnpaid, u.Kind)
	assert.Equal(t, "100", u.Details["fee"])
	assert.Equal(t, "completed", u.Details["orderStatus"])
	assert.True(t, kernel.SameUUID(u.OrderID, &orderID))
	_, ok := u.Grant()
	assert.False(t, ok)
}
