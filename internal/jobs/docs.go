// Package jobs provides scheduled background tasks for the dispatch core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic sweeps the event-driven handlers cannot cover.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Forwards committed order changes to the change topic (default every 5s)
// 2. StaleOrderExpirationJob - Expires matching orders nobody accepted in time (default every 2m)
// 3. DriverLocationCleanupJob - Deletes driver positions older than an hour (default every 15m)
// 4. LedgerAuditJob - Replays every wallet ledger against the stored balance (default every 1h)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(expiration, cleanup, relay, audit, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Every job runs on an "@every" schedule and skips a tick while its previous run is
// still going. Each run carries its own timeout; work left over when it expires is
// picked up by the next run.
//
// # Error Handling
//
// Jobs log failures and wait for the next tick. The handlers behind them are idempotent,
// so a run interrupted halfway is safe to repeat.
package jobs
