package events

import (
	"context"

	"dispatch/internal/core/domain/services"
)

// Handler reacts to order changes. Implementations re-read the order inside their own
// transaction and do nothing unless the current state still matches what they react to.
type Handler interface {
	Name() string
	Policy() services.FailurePolicy
	Handle(ctx context.Context, change OrderChange) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc struct {
	name   string
	policy services.FailurePolicy
	fn     func(ctx context.Context, change OrderChange) error
}

func NewHandlerFunc(name string, policy services.FailurePolicy, fn func(ctx context.Context, change OrderChange) error) HandlerFunc {
	return HandlerFunc{name: name, policy: policy, fn: fn}
}

func (h HandlerFunc) Name() string                   { return h.name }
func (h HandlerFunc) Policy() services.FailurePolicy { return h.policy }

func (h HandlerFunc) Handle(ctx context.Context, change OrderChange) error {
	return h.fn(ctx, change)
}
