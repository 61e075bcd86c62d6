package ledger

import (
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Key is the deterministic idempotency key of a movement within one wallet.
type Key string

// TripStartFeeKey keys the fee charged when the order enters onRoute. The platform
// commission credited for the same fee uses the same key on the platform wallet.
func TripStartFeeKey(orderID kernel.UUID) Key {
	return Key(orderID.String() + "_start_fee")
}

// CompletionFeeKey keys the fee charged at completion.
func CompletionFeeKey(orderID kernel.UUID) Key {
	return Key(orderID.String() + "_completion_fee")
}

// DriverEarningKey keys the driver's share credited at completion.
func DriverEarningKey(orderID kernel.UUID) Key {
	return Key(orderID.String() + "_driver_earning")
}

// TopupKey keys the credit of an approved top-up request.
func TopupKey(requestID kernel.UUID) Key {
	return Key("topup_" + requestID.String())
}

// PayoutKey keys the debit of a completed payout.
func PayoutKey(payoutID kernel.UUID) Key {
	return Key("payout_" + payoutID.String())
}

// NewKey validates a caller supplied key, such as the reference of a manual adjustment.
func NewKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errs.NewValueIsRequiredError("idempotencyKey")
	}
	if len(s) > 200 {
		return "", errs.NewValueIsOutOfRangeError("idempotencyKey", len(s), 1, 200)
	}
	return Key(s), nil
}

func (k Key) String() string {
	return string(k)
}
