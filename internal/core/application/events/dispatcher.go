package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// HandlerFailure is the error of one handler for one change.
type HandlerFailure struct {
	Handler string
	Err     error
}

// DispatchError collects the failures of a Dispatch call.
type DispatchError struct {
	EventID  string
	Failures []HandlerFailure
}

func (e *DispatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Handler, f.Err))
	}
	return fmt.Sprintf("event %s: %s", e.EventID, strings.Join(parts, "; "))
}

func (e *DispatchError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// Retryable reports whether any failed handler may succeed on redelivery.
func (e *DispatchError) Retryable() bool {
	for _, f := range e.Failures {
		if errs.IsRetryable(f.Err) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether a Dispatch error is worth redelivering.
func IsRetryable(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Retryable()
	}
	return errs.IsRetryable(err)
}

// Dispatcher fans a change out to every registered handler.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	memo     ports.DeliveryMemo
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. memo may be nil, in which case every handler runs
// on every delivery.
func NewDispatcher(memo ports.DeliveryMemo, logger *slog.Logger, handlers ...Handler) *Dispatcher {
	d := &Dispatcher{memo: memo, logger: logger.With("component", "dispatcher")}
	d.Register(handlers...)
	return d
}

func (d *Dispatcher) Register(handlers ...Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handlers...)
}

// Dispatch runs all handlers on change. A failure of one handler neither cancels nor
// skips the others. The returned error is a *DispatchError listing every fail-closed
// failure; fail-open failures are logged only.
func (d *Dispatcher) Dispatch(ctx context.Context, change OrderChange) error {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers...)
	d.mu.RUnlock()

	results := make([]error, len(handlers))
	var g errgroup.Group
	for i, h := range handlers {
		g.Go(func() error {
			results[i] = d.run(ctx, h, change)
			return nil
		})
	}
	_ = g.Wait()

	var failures []HandlerFailure
	for i, err := range results {
		if err != nil {
			failures = append(failures, HandlerFailure{Handler: handlers[i].Name(), Err: err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &DispatchError{EventID: change.EventID, Failures: failures}
}

func (d *Dispatcher) run(ctx context.Context, h Handler, change OrderChange) (err error) {
	name := h.Name()
	log := d.logger.With("handler", name, "event_id", change.EventID, "order_id", change.OrderID.String())

	if d.memo != nil {
		done, memoErr := d.memo.Done(ctx, change.EventID, name)
		if memoErr != nil {
			log.WarnContext(ctx, "delivery memo unavailable", "error", memoErr)
		} else if done {
			metrics.HandlerOutcomes.WithLabelValues(name, metrics.OutcomeSkipped).Inc()
			return nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = errs.NewTransientError(fmt.Errorf("handler panicked: %v", r))
		}
		d.record(ctx, log, h, change, err)
		if err != nil && h.Policy() == services.FailOpen {
			err = nil
		}
	}()

	return h.Handle(ctx, change)
}

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, h Handler, change OrderChange, err error) {
	name := h.Name()
	switch {
	case err == nil:
		metrics.HandlerOutcomes.WithLabelValues(name, metrics.OutcomeOK).Inc()
		if d.memo != nil {
			if memoErr := d.memo.MarkDone(ctx, change.EventID, name); memoErr != nil {
				log.WarnContext(ctx, "failed to remember handler completion", "error", memoErr)
			}
		}
	case h.Policy() == services.FailOpen:
		metrics.HandlerOutcomes.WithLabelValues(name, metrics.OutcomeTerminal).Inc()
		log.WarnContext(ctx, "fail-open handler failed", "error", err)
	case errs.IsRetryable(err):
		metrics.HandlerOutcomes.WithLabelValues(name, metrics.OutcomeRetryable).Inc()
		log.ErrorContext(ctx, "handler failed, will retry", "error", err)
	default:
		metrics.HandlerOutcomes.WithLabelValues(name, metrics.OutcomeTerminal).Inc()
		log.ErrorContext(ctx, "handler failed permanently", "error", err, "code", errs.CodeOf(err))
	}
}
