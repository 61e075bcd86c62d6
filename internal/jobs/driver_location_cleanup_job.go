package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type staleLocationCleaner interface {
	Handle(ctx context.Context, cmd commands.CleanStaleDriverLocationsCommand) (int64, error)
}

// DriverLocationCleanupJob removes driver positions that stopped updating.
type DriverLocationCleanupJob struct {
	handler  staleLocationCleaner
	cmd      commands.CleanStaleDriverLocationsCommand
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewDriverLocationCleanupJob(
	handler staleLocationCleaner,
	cmd commands.CleanStaleDriverLocationsCommand,
	schedule Schedule,
	logger *slog.Logger,
) *DriverLocationCleanupJob {
	return &DriverLocationCleanupJob{
		handler:  handler,
		cmd:      cmd,
		interval: schedule.Interval,
		timeout:  schedule.Timeout,
		cron:     newCron(),
		logger:   logger.With("component", "driver_location_cleanup_job"),
	}
}

func (j *DriverLocationCleanupJob) RunOnce(ctx context.Context) {
	ctx, cancel := withTimeout(ctx, j.timeout)
	defer cancel()

	if _, err := j.handler.Handle(ctx, j.cmd); err != nil {
		j.logger.ErrorContext(ctx, "Driver location cleanup failed", "error", err)
	}
}

func (j *DriverLocationCleanupJob) Start() error {
	if _, err := j.cron.AddFunc(every(j.interval), func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), fmt.Sprintf("Driver location cleanup job started (every %s)", j.interval))
	return nil
}

func (j *DriverLocationCleanupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Driver location cleanup job stopped")
}
