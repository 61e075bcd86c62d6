package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

type ledgerAuditor interface {
	Handle(ctx context.Context, query queries.ValidateAllLedgersQuery) (queries.ValidateAllLedgersResponse, error)
}

// LedgerAuditJob replays every wallet's ledger. The query raises operator alerts for
// invalid wallets; the job only reports the run.
type LedgerAuditJob struct {
	handler  ledgerAuditor
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewLedgerAuditJob(handler ledgerAuditor, schedule Schedule, logger *slog.Logger) *LedgerAuditJob {
	return &LedgerAuditJob{
		handler:  handler,
		interval: schedule.Interval,
		timeout:  schedule.Timeout,
		cron:     newCron(),
		logger:   logger.With("component", "ledger_audit_job"),
	}
}

func (j *LedgerAuditJob) RunOnce(ctx context.Context) {
	ctx, cancel := withTimeout(ctx, j.timeout)
	defer cancel()

	resp, err := j.handler.Handle(ctx, queries.NewValidateAllLedgersQuery())
	if err != nil {
		j.logger.ErrorContext(ctx, "Ledger audit failed", "error", err, "checked", resp.Checked)
		return
	}
	j.logger.InfoContext(ctx, "Ledger audit finished", "checked", resp.Checked, "invalid", len(resp.Invalid))
}

func (j *LedgerAuditJob) Start() error {
	if _, err := j.cron.AddFunc(every(j.interval), func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), fmt.Sprintf("Ledger audit job started (every %s)", j.interval))
	return nil
}

func (j *LedgerAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Ledger audit job stopped")
}
