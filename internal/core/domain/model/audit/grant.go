package audit

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Grant is a recorded permission to move an order to a driver: an admin reassignment,
// or the guard's own restoration of the rightful driver.
type Grant struct {
	OrderID  kernel.UUID
	DriverID kernel.UUID
	At       time.Time
}

// Covers reports whether the grant authorizes moving orderID to driverID at now.
func (g Grant) Covers(orderID, driverID kernel.UUID, now time.Time, window time.Duration) bool {
	if !g.OrderID.IsEqual(orderID) || !g.DriverID.IsEqual(driverID) {
		return false
	}
	age := now.Sub(g.At)
	return age >= -window && age <= window
}
