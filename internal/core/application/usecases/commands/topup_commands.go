package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateTopupCommandIsNotConstructed = errors.New(
		"CreateTopupCommand must be created via NewCreateTopupCommand constructor",
	)
	ErrProcessTopupCommandIsNotConstructed = errors.New(
		"ProcessTopupCommand must be created via NewApproveTopupCommand or NewRejectTopupCommand",
	)
)

// CreateTopupCommand is a driver asking for wallet credit. Amount limits are enforced by
// the request aggregate.
type CreateTopupCommand struct { //nolint:recvcheck //using for validation
	actor     kernel.Actor
	requestID kernel.UUID
	amount    int64

	guard guard.ConstructorGuard
}

func NewCreateTopupCommand(actor kernel.Actor, requestID kernel.UUID, amount int64) (CreateTopupCommand, error) {
	if err := requestID.Validate(); err != nil {
		return CreateTopupCommand{}, err
	}
	return CreateTopupCommand{actor: actor, requestID: requestID, amount: amount, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateTopupCommand) Validate() error {
	return c.guard.Validate(ErrCreateTopupCommandIsNotConstructed)
}

func (c CreateTopupCommand) Actor() kernel.Actor    { return c.actor }
func (c CreateTopupCommand) RequestID() kernel.UUID { return c.requestID }
func (c CreateTopupCommand) Amount() int64          { return c.amount }

// ProcessTopupCommand is an admin decision on a pending top-up request.
type ProcessTopupCommand struct { //nolint:recvcheck //using for validation
	actor     kernel.Actor
	requestID kernel.UUID
	notes     string

	guard guard.ConstructorGuard
}

type (
	ApproveTopupCommand struct{ ProcessTopupCommand }
	RejectTopupCommand  struct{ ProcessTopupCommand }
)

func NewApproveTopupCommand(actor kernel.Actor, requestID kernel.UUID) (ApproveTopupCommand, error) {
	c, err := newProcessTopupCommand(actor, requestID, "")
	return ApproveTopupCommand{c}, err
}

func NewRejectTopupCommand(actor kernel.Actor, requestID kernel.UUID, reason string) (RejectTopupCommand, error) {
	c, err := newProcessTopupCommand(actor, requestID, reason)
	return RejectTopupCommand{c}, err
}

func newProcessTopupCommand(actor kernel.Actor, requestID kernel.UUID, notes string) (ProcessTopupCommand, error) {
	if err := requestID.Validate(); err != nil {
		return ProcessTopupCommand{}, err
	}
	return ProcessTopupCommand{actor: actor, requestID: requestID, notes: notes, guard: guard.NewConstructorGuard()}, nil
}

func (c ProcessTopupCommand) Validate() error {
	return c.guard.Validate(ErrProcessTopupCommandIsNotConstructed)
}

func (c ProcessTopupCommand) Actor() kernel.Actor    { return c.actor }
func (c ProcessTopupCommand) RequestID() kernel.UUID { return c.requestID }
func (c ProcessTopupCommand) Notes() string          { return c.notes }
