package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type orderChangeRelay interface {
	Handle(ctx context.Context, cmd commands.RelayOrderChangesCommand) (int, error)
}

// OutboxRelayJob forwards committed order changes to the change topic. The schedule is
// the fallback; the outbox listener calls Relay as soon as a change is written.
type OutboxRelayJob struct {
	handler  orderChangeRelay
	cmd      commands.RelayOrderChangesCommand
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewOutboxRelayJob(
	handler orderChangeRelay,
	cmd commands.RelayOrderChangesCommand,
	schedule Schedule,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		handler:  handler,
		cmd:      cmd,
		interval: schedule.Interval,
		timeout:  schedule.Timeout,
		cron:     newCron(),
		logger:   logger.With("component", "outbox_relay_job"),
	}
}

// Relay drains the outbox batch by batch until a batch comes back short.
func (j *OutboxRelayJob) Relay(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, j.timeout)
	defer cancel()

	total := 0
	for {
		n, err := j.handler.Handle(ctx, j.cmd)
		total += n
		if err != nil {
			return fmt.Errorf("relay order changes after %d: %w", total, err)
		}
		if n < j.cmd.Limit() {
			break
		}
	}
	if total > 0 {
		j.logger.DebugContext(ctx, "Order changes relayed", "count", total)
	}
	return nil
}

func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc(every(j.interval), func() {
		ctx := context.Background()
		if err := j.Relay(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Outbox relay failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), fmt.Sprintf("Outbox relay job started (every %s)", j.interval))
	return nil
}

func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
