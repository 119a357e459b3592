// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with
// seconds) and run as the system principal.
//
// # Available Jobs
//
// PerformanceRollupJob rebuilds every driver's today/week/month performance
// snapshot from the earnings ledger. Snapshots are otherwise only refreshed
// when a delivery is credited, so without the rollup a driver who stops
// working would keep yesterday's "today" totals.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(refreshHandler, cfg.RollupSchedule, cfg.StoreTimeout, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed rollup is logged and retried on the next tick. Overlapping runs
// are skipped.
package jobs
