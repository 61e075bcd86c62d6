package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

type MockDeliveryMemo struct{ mock.Mock }

func (m *MockDeliveryMemo) Done(ctx context.Context, eventID, handler string) (bool, error) {
	args := m.Called(ctx, eventID, handler)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryMemo) MarkDone(ctx context.Context, eventID, handler string) error {
	return m.Called(ctx, eventID, handler).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleChange() events.OrderChange {
	now := time.Now()
	before := order.Snapshot{ID: kernel.NewUUID(), OwnerID: kernel.NewUUID(), Price: 1000, Status: order.Matching, Version: 1, UpdatedAt: now}
	after := before.Clone()
	after.Status = order.Accepted
	after.Version = 2
	return events.NewOrderChange(&before, after)
}

func TestDispatcher_RunsEveryHandlerDespiteFailures(t *testing.T) {
	var calls atomic.Int32
	failing := events.NewHandlerFunc("failing", services.FailClosed, func(context.Context, events.OrderChange) error {
		calls.Add(1)
		return errors.New("store down")
	})
	ok := events.NewHandlerFunc("ok", services.FailClosed, func(context.Context, events.OrderChange) error {
		calls.Add(1)
		return nil
	})

	d := events.NewDispatcher(nil, discardLogger(), failing, ok)
	err := d.Dispatch(t.Context(), sampleChange())

	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	var de *events.DispatchError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Failures, 1)
	assert.Equal(t, "failing", de.Failures[0].Handler)
	assert.True(t, events.IsRetryable(err))
}

func TestDispatcher_FailOpenErrorsAreSwallowed(t *testing.T) {
	notifier := events.NewHandlerFunc("notifier", services.FailOpen, func(context.Context, events.OrderChange) error {
		return errors.New("push gateway down")
	})

	err := events.NewDispatcher(nil, discardLogger(), notifier).Dispatch(t.Context(), sampleChange())

	assert.NoError(t, err)
}

func TestDispatcher_TerminalFailureIsNotRetryable(t *testing.T) {
	h := events.NewHandlerFunc("guard", services.FailClosed, func(context.Context, events.OrderChange) error {
		return errs.NewFailedPreconditionError("order moved on")
	})

	err := events.NewDispatcher(nil, discardLogger(), h).Dispatch(t.Context(), sampleChange())

	require.Error(t, err)
	assert.False(t, events.IsRetryable(err))
}

func TestDispatcher_MixedFailuresAreRetryable(t *testing.T) {
	terminal := events.NewHandlerFunc("a", services.FailClosed, func(context.Context, events.OrderChange) error {
		return errs.NewValueIsRequiredError("driver")
	})
	transient := events.NewHandlerFunc("b", services.FailClosed, func(context.Context, events.OrderChange) error {
		return errors.New("deadlock")
	})

	err := events.NewDispatcher(nil, discardLogger(), terminal, transient).Dispatch(t.Context(), sampleChange())

	assert.True(t, events.IsRetryable(err))
}

func TestDispatcher_PanicBecomesRetryableFailure(t *testing.T) {
	h := events.NewHandlerFunc("panicky", services.FailClosed, func(context.Context, events.OrderChange) error {
		panic("boom")
	})

	err := events.NewDispatcher(nil, discardLogger(), h).Dispatch(t.Context(), sampleChange())

	require.Error(t, err)
	assert.True(t, events.IsRetryable(err))
}

func TestDispatcher_MemoSkipsCompletedHandlers(t *testing.T) {
	ctx := t.Context()
	change := sampleChange()
	memo := new(MockDeliveryMemo)
	memo.On("Done", ctx, change.EventID, "done").Return(true, nil).Once()
	memo.On("Done", ctx, change.EventID, "pending").Return(false, nil).Once()
	memo.On("MarkDone", ctx, change.EventID, "pending").Return(nil).Once()

	var doneCalls, pendingCalls atomic.Int32
	done := events.NewHandlerFunc("done", services.FailClosed, func(context.Context, events.OrderChange) error {
		doneCalls.Add(1)
		return nil
	})
	pending := events.NewHandlerFunc("pending", services.FailClosed, func(context.Context, events.OrderChange) error {
		pendingCalls.Add(1)
		return nil
	})

	err := events.NewDispatcher(memo, discardLogger(), done, pending).Dispatch(ctx, change)

	require.NoError(t, err)
	assert.Equal(t, int32(0), doneCalls.Load())
	assert.Equal(t, int32(1), pendingCalls.Load())
	memo.AssertExpectations(t)
}

func TestDispatcher_FailedHandlersAreNotRemembered(t *testing.T) {
	ctx := t.Context()
	change := sampleChange()
	memo := new(MockDeliveryMemo)
	memo.On("Done", ctx, change.EventID, "failing").Return(false, nil).Once()

	h := events.NewHandlerFunc("failing", services.FailClosed, func(context.Context, events.OrderChange) error {
		return errors.New("timeout")
	})

	err := events.NewDispatcher(memo, discardLogger(), h).Dispatch(ctx, change)

	require.Error(t, err)
	memo.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_MemoOutageStillDelivers(t *testing.T) {
	ctx := t.Context()
	change := sampleChange()
	memo := new(MockDeliveryMemo)
	memo.On("Done", ctx, change.EventID, "h").Return(false, errors.New("redis down")).Once()
	memo.On("MarkDone", ctx, change.EventID, "h").Return(errors.New("redis down")).Once()

	var calls atomic.Int32
	h := events.NewHandlerFunc("h", services.FailClosed, func(context.Context, events.OrderChange) error {
		calls.Add(1)
		return nil
	})

	err := events.NewDispatcher(memo, discardLogger(), h).Dispatch(ctx, change)

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
