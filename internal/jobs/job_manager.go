package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is how often a job runs and how long one run may take.
type Schedule struct {
	Interval time.Duration
	Timeout  time.Duration
}

type job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs   []namedJob
	logger *slog.Logger
}

type namedJob struct {
	name string
	job  job
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	expiration *StaleOrderExpirationJob,
	cleanup *DriverLocationCleanupJob,
	relay *OutboxRelayJob,
	audit *LedgerAuditJob,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		jobs: []namedJob{
			{name: "outbox relay", job: relay},
			{name: "stale order expiration", job: expiration},
			{name: "driver location cleanup", job: cleanup},
			{name: "ledger audit", job: audit},
		},
		logger: logger.With("component", "job_manager"),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start; jobs already started are stopped again.
func (jm *JobManager) StartAll() error {
	for i, j := range jm.jobs {
		if err := j.job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", j.name, err)
		}
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running invocations to finish.
func (jm *JobManager) StopAll() {
	for _, j := range jm.jobs {
		j.job.Stop()
	}
	jm.logger.InfoContext(context.Background(), "All jobs stopped")
}

// newCron skips a tick while the previous run of the same job is still going.
func newCron() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
