package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// BalanceGuard records the outcome of the acceptance balance check for one driver.
// It only short-circuits a later check for that same driver.
type BalanceGuard struct {
	DriverID  kernel.UUID `json:"driverId"`
	Passed    bool        `json:"passed"`
	CheckedAt time.Time   `json:"checkedAt"`
}

// AppliesTo reports whether the marker was written for driverID.
func (g *BalanceGuard) AppliesTo(driverID kernel.UUID) bool {
	return g != nil && g.DriverID.IsEqual(driverID)
}
