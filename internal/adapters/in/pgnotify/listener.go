// Package pgnotify turns Postgres notifications on the outbox channel into relay runs.
package pgnotify

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const pingInterval = 90 * time.Second

// Listener wakes the relay as soon as a committed order write appends to the outbox.
// Notifications arriving while a relay is running collapse into one follow-up run.
type Listener struct {
	listener *pq.Listener
	channel  string
	relay    func(ctx context.Context) error
	logger   *slog.Logger
}

func NewListener(dsn, channel string, relay func(ctx context.Context) error, logger *slog.Logger) *Listener {
	logger = logger.With("component", "outbox_listener", "channel", channel)
	l := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("listener connection event", "event", int(ev), "error", err)
		}
	})
	return &Listener{listener: l, channel: channel, relay: relay, logger: logger}
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.listener.Listen(l.channel); err != nil {
		return err
	}
	defer func() {
		_ = l.listener.Close()
	}()

	return run(ctx, l.listener.Notify, l.listener.Ping, l.relay, l.logger)
}

// run drains notify into a single pending wake-up and relays from a separate goroutine.
func run(
	ctx context.Context,
	notify <-chan *pq.Notification,
	ping func() error,
	relay func(ctx context.Context) error,
	logger *slog.Logger,
) error {
	wake := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-wake:
				if err := relay(ctx); err != nil && ctx.Err() == nil {
					logger.WarnContext(ctx, "relay after notification failed", "error", err)
				}
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			return ctx.Err()
		case n := <-notify:
			// A nil notification follows a reconnect; rows may have been missed meanwhile.
			if n == nil {
				logger.InfoContext(ctx, "listener reconnected")
			}
			select {
			case wake <- struct{}{}:
			default:
			}
		case <-ticker.C:
			if ping != nil {
				if err := ping(); err != nil {
					logger.WarnContext(ctx, "listener ping failed", "error", err)
				}
			}
		}
	}
}
