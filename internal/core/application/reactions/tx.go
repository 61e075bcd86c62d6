package reactions

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// inOrderTx runs fn with the order locked in a fresh transaction and commits when fn
// succeeds.
func inOrderTx(
	ctx context.Context,
	factory ports.UnitOfWorkFactory,
	orderID kernel.UUID,
	fn func(uow ports.UnitOfWork, o *order.Order) error,
) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if err = fn(uow, o); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
