package services

import (
	"errors"

	"github.com/shopspring/decimal"

	"dispatch/internal/pkg/errs"
)

var (
	// DefaultStartRate is the share of the price charged when the trip starts.
	DefaultStartRate = decimal.RequireFromString("0.10")

	// DefaultCommissionRate is the platform's total share of the price.
	DefaultCommissionRate = decimal.RequireFromString("0.20")
)

// FeeBreakdown holds the integral MRU amounts derived from one order price.
type FeeBreakdown struct {
	Price         int64
	StartFee      int64
	CompletionFee int64
	DriverEarning int64
}

// PlatformTotal is what the platform collects over both phases.
func (b FeeBreakdown) PlatformTotal() int64 {
	return b.StartFee + b.CompletionFee
}

// FeeSchedule computes the two-phase commission of an order.
//
// Business rules:
//   - startFee = round(price × startRate)
//   - completionFee = round(price × commissionRate) − startFee
//   - driverEarning = round(price × (1 − commissionRate))
//   - rounding is half-up to whole MRU
//
// Example usage:
//
//	schedule := services.NewDefaultFeeSchedule()
//	fees, _ := schedule.Breakdown(155)
//	// fees.StartFee == 16, fees.CompletionFee == 15, fees.DriverEarning == 124
type FeeSchedule struct {
	startRate      decimal.Decimal
	commissionRate decimal.Decimal
}

// NewFeeSchedule validates the rates.
//
// Parameters:
//   - startRate: share charged at trip start, in [0, commissionRate]
//   - commissionRate: total platform share, in [0, 1]
//
// Returns:
//   - FeeSchedule: ready for Breakdown
//   - error: ValueIsOutOfRangeError when a rate is outside its bounds
func NewFeeSchedule(startRate, commissionRate decimal.Decimal) (FeeSchedule, error) {
	one := decimal.NewFromInt(1)
	var errList []error
	if commissionRate.IsNegative() || commissionRate.GreaterThan(one) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("commissionRate", commissionRate.String(), 0, 1))
	}
	if startRate.IsNegative() || startRate.GreaterThan(commissionRate) {
		errList = append(errList, errs.NewValueIsOutOfRangeError("startRate", startRate.String(), 0, commissionRate.String()))
	}
	if err := errors.Join(errList...); err != nil {
		return FeeSchedule{}, err
	}
	return FeeSchedule{startRate: startRate, commissionRate: commissionRate}, nil
}

// NewDefaultFeeSchedule returns the 10% + 10% schedule.
func NewDefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{startRate: DefaultStartRate, commissionRate: DefaultCommissionRate}
}

// StartFee is the trip-start part of the commission.
func (s FeeSchedule) StartFee(price int64) int64 {
	return roundShare(price, s.startRate)
}

// Breakdown computes every amount for price.
//
// Returns:
//   - FeeBreakdown: the per-phase amounts
//   - error: ValueIsOutOfRangeError for a non-positive price
func (s FeeSchedule) Breakdown(price int64) (FeeBreakdown, error) {
	if price <= 0 {
		return FeeBreakdown{}, errs.NewValueIsOutOfRangeError("price", price, 1, "max int64")
	}
	startFee := s.StartFee(price)
	commission := roundShare(price, s.commissionRate)
	return FeeBreakdown{
		Price:         price,
		StartFee:      startFee,
		CompletionFee: commission - startFee,
		DriverEarning: roundShare(price, decimal.NewFromInt(1).Sub(s.commissionRate)),
	}, nil
}

func roundShare(price int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(price).Mul(rate).Round(0).IntPart()
}
