package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand stores the caller's latest position.
type UpdateDriverLocationCommand struct { //nolint:recvcheck //using for validation
	actor kernel.Actor
	lat   float64
	lng   float64

	guard guard.ConstructorGuard
}

func NewUpdateDriverLocationCommand(actor kernel.Actor, lat, lng float64) (UpdateDriverLocationCommand, error) {
	var errList []error
	if lat < -90 || lat > 90 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("lat", lat, -90, 90))
	}
	if lng < -180 || lng > 180 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("lng", lng, -180, 180))
	}
	if err := errors.Join(errList...); err != nil {
		return UpdateDriverLocationCommand{}, err
	}
	return UpdateDriverLocationCommand{actor: actor, lat: lat, lng: lng, guard: guard.NewConstructorGuard()}, nil
}

func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

type UpdateDriverLocationCommandHandler struct {
	uowFactory LocationUoWFactory
	clock      ports.Clock
}

func NewUpdateDriverLocationCommandHandler(uowFactory LocationUoWFactory, clock ports.Clock) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h *UpdateDriverLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDriverLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := cmd.actor.RequireAuthenticated(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.LocationRepository().Upsert(ctx, cmd.actor.ID(), cmd.lat, cmd.lng, h.clock.Now()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
