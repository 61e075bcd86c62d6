package pgnotify

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CoalescesBurstIntoFewRelays(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	notify := make(chan *pq.Notification)
	release := make(chan struct{})
	var calls atomic.Int32

	relay := func(context.Context) error {
		if calls.Add(1) == 1 {
			<-release
		}
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, notify, nil, relay, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	notify <- &pq.Notification{Channel: "order_changes", Extra: "a:1"}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	// The first relay is blocked; the burst collapses into one pending wake-up.
	for range 5 {
		notify <- &pq.Notification{Channel: "order_changes"}
	}
	close(release)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestRun_ReconnectTriggersRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	notify := make(chan *pq.Notification)
	var calls atomic.Int32

	go func() {
		_ = run(ctx, notify, nil, func(context.Context) error {
			calls.Add(1)
			return nil
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	notify <- nil
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
}
