package payout

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Method is how the money leaves the platform.
type Method string

const (
	MethodManual       Method = "manual"
	MethodBankTransfer Method = "bank_transfer"
	MethodWise         Method = "wise"
	MethodStripe       Method = "stripe"
	MethodMobileMoney  Method = "mobile_money"
)

func (m Method) Validate() error {
	switch m {
	case MethodManual, MethodBankTransfer, MethodWise, MethodStripe, MethodMobileMoney:
		return nil
	case "":
		return errs.NewValueIsRequiredError("method")
	default:
		return errs.NewValueIsInvalidErrorWithCause("method", fmt.Errorf("%q is not a payout method", string(m)))
	}
}

func (m Method) String() string {
	return string(m)
}
