package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	performanceRollupJob *PerformanceRollupJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	refresher PerformanceRefresher,
	rollupSchedule string,
	rollupTimeout time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		performanceRollupJob: NewPerformanceRollupJob(refresher, rollupSchedule, rollupTimeout, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.performanceRollupJob.Start(); err != nil {
		return fmt.Errorf("failed to start performance rollup job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.performanceRollupJob.Stop()
}
