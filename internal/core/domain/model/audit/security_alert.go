package audit

import (
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// AlertKind classifies a security alert.
type AlertKind string

const (
	AlertUnauthorizedReassignment AlertKind = "unauthorized_reassignment"
	AlertLedgerDiscrepancy        AlertKind = "ledger_discrepancy"
	AlertDeliveryExhausted        AlertKind = "delivery_exhausted"
	AlertTripStartFeeUnpaid       AlertKind = "trip_start_fee_unpaid"
)

// Severity orders alerts for operators.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SecurityAlert is raised for operators, never shown to end users.
type SecurityAlert struct {
	ID                kernel.UUID       `json:"id"`
	Kind              AlertKind         `json:"kind"`
	Severity          Severity          `json:"severity"`
	OrderID           *kernel.UUID      `json:"orderId,omitempty"`
	AttemptedDriverID *kernel.UUID      `json:"attemptedDriverId,omitempty"`
	RestoredDriverID  *kernel.UUID      `json:"restoredDriverId,omitempty"`
	WalletID          string            `json:"walletId,omitempty"`
	Message           string            `json:"message"`
	Details           map[string]string `json:"details,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// NewUnauthorizedReassignment describes a driver change on a locked order that nothing
// authorized. attempted is nil when the driver was cleared.
func NewUnauthorizedReassignment(orderID kernel.UUID, attempted *kernel.UUID, restored kernel.UUID, now time.Time) SecurityAlert {
	return SecurityAlert{
		ID:                kernel.NewUUID(),
		Kind:              AlertUnauthorizedReassignment,
		Severity:          SeverityCritical,
		OrderID:           &orderID,
		AttemptedDriverID: attempted,
		RestoredDriverID:  &restored,
		Message:           "driver change on a locked order was reverted",
		CreatedAt:         now,
	}
}

// Grant returns the restoration an unauthorized reassignment alert stands for, so the
// guard recognizes its own revert.
func (a SecurityAlert) Grant() (Grant, bool) {
	if a.Kind != AlertUnauthorizedReassignment || a.OrderID == nil || a.RestoredDriverID == nil {
		return Grant{}, false
	}
	return Grant{OrderID: *a.OrderID, DriverID: *a.RestoredDriverID, At: a.CreatedAt}, true
}

// NewLedgerDiscrepancy describes a wallet whose balance disagrees with its ledger.
func NewLedgerDiscrepancy(walletID string, stored, computed int64, broken int, now time.Time) SecurityAlert {
	return SecurityAlert{
		ID:       kernel.NewUUID(),
		Kind:     AlertLedgerDiscrepancy,
		Severity: SeverityCritical,
		WalletID: walletID,
		Message:  "wallet balance does not match its ledger",
		Details: map[string]string{
			"storedBalance":   strconv.FormatInt(stored, 10),
			"computedBalance": strconv.FormatInt(computed, 10),
			"brokenEntries":   strconv.Itoa(broken),
		},
		CreatedAt: now,
	}
}

// NewDeliveryExhausted describes a change event whose handlers kept failing.
func NewDeliveryExhausted(eventID string, orderID kernel.UUID, cause error, now time.Time) SecurityAlert {
	return SecurityAlert{
		ID:       kernel.NewUUID(),
		Kind:     AlertDeliveryExhausted,
		Severity: SeverityWarning,
		OrderID:  &orderID,
		Message:  "order change could not be processed and was dead-lettered",
		Details: map[string]string{
			"eventId": eventID,
			"error":   cause.Error(),
		},
		CreatedAt: now,
	}
}

// NewTripStartFeeUnpaid describes a started order that moved on before its trip-start fee
// was charged, and whose driver could no longer pay it. Settlement of the order waits for
// the fee.
func NewTripStartFeeUnpaid(orderID kernel.UUID, walletID string, fee int64, orderStatus string, cause error, now time.Time) SecurityAlert {
	return SecurityAlert{
		ID:       kernel.NewUUID(),
		Kind:     AlertTripStartFeeUnpaid,
		Severity: SeverityWarning,
		OrderID:  &orderID,
		WalletID: walletID,
		Message:  "trip start fee could not be charged after the order moved on",
		Details: map[string]string{
			"fee":         strconv.FormatInt(fee, 10),
			"orderStatus": orderStatus,
			"error":       cause.Error(),
		},
		CreatedAt: now,
	}
}
