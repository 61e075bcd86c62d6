package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type staleOrderExpirer interface {
	Handle(ctx context.Context, cmd commands.ExpireStaleOrdersCommand) (int, error)
}

// StaleOrderExpirationJob expires matching orders nobody accepted within the match
// timeout. Each run is bounded by the run timeout; leftovers go to the next run.
type StaleOrderExpirationJob struct {
	handler  staleOrderExpirer
	cmd      commands.ExpireStaleOrdersCommand
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewStaleOrderExpirationJob(
	handler staleOrderExpirer,
	cmd commands.ExpireStaleOrdersCommand,
	schedule Schedule,
	logger *slog.Logger,
) *StaleOrderExpirationJob {
	return &StaleOrderExpirationJob{
		handler:  handler,
		cmd:      cmd,
		interval: schedule.Interval,
		timeout:  schedule.Timeout,
		cron:     newCron(),
		logger:   logger.With("component", "stale_order_expiration_job"),
	}
}

// RunOnce performs one sweep.
func (j *StaleOrderExpirationJob) RunOnce(ctx context.Context) {
	ctx, cancel := withTimeout(ctx, j.timeout)
	defer cancel()

	expired, err := j.handler.Handle(ctx, j.cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stale order expiration failed", "error", err, "expired", expired)
		return
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "Stale orders expired", "count", expired)
	}
}

func (j *StaleOrderExpirationJob) Start() error {
	if _, err := j.cron.AddFunc(every(j.interval), func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), fmt.Sprintf("Stale order expiration job started (every %s)", j.interval))
	return nil
}

func (j *StaleOrderExpirationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stale order expiration job stopped")
}
