package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// DefaultRollupSchedule runs the rollup at the start of every quarter hour, so
// day, week and month rollovers show up within fifteen minutes.
const DefaultRollupSchedule = "0 */15 * * * *"

// PerformanceRefresher recomputes driver performance snapshots.
type PerformanceRefresher interface {
	Handle(ctx context.Context, cmd commands.RefreshPerformanceCommand) (int, error)
}

// PerformanceRollupJob periodically rebuilds every driver's performance
// snapshot from the earnings ledger.
type PerformanceRollupJob struct {
	handler  PerformanceRefresher
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPerformanceRollupJob creates the job. schedule is a six-field cron
// expression; an empty one means DefaultRollupSchedule. timeout bounds a run.
func NewPerformanceRollupJob(
	handler PerformanceRefresher,
	schedule string,
	timeout time.Duration,
	logger *slog.Logger,
) *PerformanceRollupJob {
	if schedule == "" {
		schedule = DefaultRollupSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceRollupJob{
		handler:  handler,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "performance_rollup_job"),
	}
}

// Start schedules the job.
func (j *PerformanceRollupJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Performance rollup job started", "schedule", j.schedule)
	return nil
}

// Run performs one rollup as the system principal.
func (j *PerformanceRollupJob) Run() {
	ctx := kernel.WithPrincipal(context.Background(), kernel.SystemPrincipal())
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	refreshed, err := j.handler.Handle(ctx, commands.NewRefreshPerformanceCommand())
	if err != nil {
		// Drivers refreshed before the failure keep their new snapshot.
		j.logger.ErrorContext(ctx, "Performance rollup failed", "refreshed", refreshed, "error", err)
		return
	}
	j.logger.InfoContext(ctx, "Performance rollup finished", "refreshed", refreshed)
}

// Stop stops scheduling and waits for a running rollup to finish.
func (j *PerformanceRollupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Performance rollup job stopped")
}
