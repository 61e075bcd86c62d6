package settlement

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/ledger"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// ErrTripStartFeeMissing is returned by Settle when the completed order has no trip-start
// fee entry yet. It is transient: the start-fee handler may still be in flight.
var ErrTripStartFeeMissing = errs.NewTransientError(errors.New("trip start fee has not been charged"))

// Charge reports what one fee phase did.
type Charge struct {
	Fee            int64
	DriverEntry    Result
	PlatformEntry  Result
	AlreadyApplied bool
}

// Settlement reports what completion did.
type Settlement struct {
	Fees           services.FeeBreakdown
	Earning        Result
	CompletionFee  Result
	Commission     Result
	AlreadyApplied bool
}

// FeeEngine applies the two-phase commission of an order through the wallet accessor.
// Every movement carries a key derived from the order id, so each phase can be retried
// independently.
type FeeEngine struct {
	accessor WalletAccessor
	schedule services.FeeSchedule
}

func NewFeeEngine(accessor WalletAccessor, schedule services.FeeSchedule) FeeEngine {
	return FeeEngine{accessor: accessor, schedule: schedule}
}

func (e FeeEngine) Schedule() services.FeeSchedule {
	return e.schedule
}

// ChargeTripStart debits the trip-start fee from the assigned driver and credits it to
// the platform under the same key. A zero fee charges nothing.
func (e FeeEngine) ChargeTripStart(ctx context.Context, store LedgerStore, o *order.Order) (Charge, error) {
	driverID, err := requireDriver(o)
	if err != nil {
		return Charge{}, err
	}
	return e.ChargeTripStartTo(ctx, store, o, driverID)
}

// ChargeTripStartTo charges the trip-start fee to driverID. An order pays the fee once:
// when any driver wallet already carries it, nothing is charged.
func (e FeeEngine) ChargeTripStartTo(ctx context.Context, store LedgerStore, o *order.Order, driverID kernel.UUID) (Charge, error) {
	fee := e.schedule.StartFee(o.Price())
	if fee == 0 {
		return Charge{}, nil
	}
	paid, err := findTripStartFee(ctx, store, o.ID())
	if err != nil {
		return Charge{}, err
	}
	if paid != nil && paid.WalletID() != wallet.DriverWalletID(driverID) {
		return Charge{Fee: fee, AlreadyApplied: true}, nil
	}

	orderID := o.ID()
	key := ledger.TripStartFeeKey(orderID)
	meta := map[string]string{"price": fmt.Sprint(o.Price())}

	driverEntry, err := e.accessor.Apply(ctx, store, Delta{
		WalletID: wallet.DriverWalletID(driverID),
		Amount:   -fee,
		Type:     ledger.TripStartFee,
		Key:      key,
		OrderID:  &orderID,
		Metadata: meta,
	})
	if err != nil {
		return Charge{}, err
	}
	platformEntry, err := e.accessor.Apply(ctx, store, Delta{
		WalletID: wallet.PlatformID,
		Amount:   fee,
		Type:     ledger.PlatformCommission,
		Key:      key,
		OrderID:  &orderID,
		Metadata: map[string]string{"driverId": driverID.String(), "phase": "trip_start"},
	})
	if err != nil {
		return Charge{}, err
	}

	if !driverEntry.AlreadyApplied {
		metrics.FeesApplied.WithLabelValues(string(ledger.TripStartFee)).Inc()
		metrics.FeeAmount.WithLabelValues(string(ledger.TripStartFee)).Add(float64(fee))
	}
	return Charge{
		Fee:            fee,
		DriverEntry:    driverEntry,
		PlatformEntry:  platformEntry,
		AlreadyApplied: driverEntry.AlreadyApplied && platformEntry.AlreadyApplied,
	}, nil
}

// Settle credits the driver earning, debits the completion fee and credits the platform
// commission. It requires the trip-start fee entry to exist when a start fee is due.
func (e FeeEngine) Settle(ctx context.Context, store LedgerStore, o *order.Order) (Settlement, error) {
	if o.Status() != order.Completed {
		return Settlement{}, errs.NewFailedPreconditionError(fmt.Sprintf("cannot settle a %s order", o.Status()))
	}
	driverID, err := requireDriver(o)
	if err != nil {
		return Settlement{}, err
	}
	fees, err := e.schedule.Breakdown(o.Price())
	if err != nil {
		return Settlement{}, err
	}

	orderID := o.ID()
	driverWallet := wallet.DriverWalletID(driverID)

	// The start fee may sit in the wallet of a driver the order was reassigned away from.
	if fees.StartFee > 0 {
		paid, err := findTripStartFee(ctx, store, orderID)
		if err != nil {
			return Settlement{}, err
		}
		if paid == nil {
			return Settlement{}, fmt.Errorf("order %s: %w", orderID, ErrTripStartFeeMissing)
		}
	}

	out := Settlement{Fees: fees, AlreadyApplied: true}
	steps := []struct {
		target *Result
		delta  Delta
	}{
		{&out.Earning, Delta{
			WalletID: driverWallet, Amount: fees.DriverEarning, Type: ledger.DriverEarning,
			Key: ledger.DriverEarningKey(orderID), OrderID: &orderID,
		}},
		{&out.CompletionFee, Delta{
			WalletID: driverWallet, Amount: -fees.CompletionFee, Type: ledger.CompletionFee,
			Key: ledger.CompletionFeeKey(orderID), OrderID: &orderID,
		}},
		{&out.Commission, Delta{
			WalletID: wallet.PlatformID, Amount: fees.CompletionFee, Type: ledger.PlatformCommission,
			Key: ledger.CompletionFeeKey(orderID), OrderID: &orderID,
			Metadata: map[string]string{"driverId": driverID.String(), "phase": "completion"},
		}},
	}
	for _, step := range steps {
		if step.delta.Amount == 0 {
			continue
		}
		res, err := e.accessor.Apply(ctx, store, step.delta)
		if err != nil {
			return Settlement{}, err
		}
		*step.target = res
		if !res.AlreadyApplied {
			out.AlreadyApplied = false
			metrics.FeesApplied.WithLabelValues(string(step.delta.Type)).Inc()
			metrics.FeeAmount.WithLabelValues(string(step.delta.Type)).Add(float64(abs(step.delta.Amount)))
		}
	}
	return out, nil
}

// findTripStartFee returns the driver debit of the order's trip-start fee, or nil when it
// has not been charged.
func findTripStartFee(ctx context.Context, store LedgerStore, orderID kernel.UUID) (*ledger.Entry, error) {
	entry, err := store.LedgerRepository().FindByKeyAndType(ctx, ledger.TripStartFeeKey(orderID), ledger.TripStartFee)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func requireDriver(o *order.Order) (kernel.UUID, error) {
	id := o.AssignedDriverID()
	if id == nil {
		return kernel.UUID{}, order.ErrDriverIsRequired
	}
	return *id, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
