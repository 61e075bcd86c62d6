package ledger

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// EntryType classifies a movement.
type EntryType string

const (
	TripStartFee       EntryType = "trip_start_fee"
	CompletionFee      EntryType = "completion_fee"
	PlatformCommission EntryType = "platform_commission"
	DriverEarning      EntryType = "driver_earning"
	Topup              EntryType = "topup"
	Payout             EntryType = "payout"
	Adjustment         EntryType = "adjustment"
)

// Validate rejects unknown types.
func (t EntryType) Validate() error {
	switch t {
	case TripStartFee, CompletionFee, PlatformCommission, DriverEarning, Topup, Payout, Adjustment:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a ledger entry type", string(t)))
	}
}

func (t EntryType) String() string {
	return string(t)
}
