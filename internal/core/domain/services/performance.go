package services

import (
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/earnings"
)

// RollupPerformance derives a driver's today, week and month totals from the
// ledger. The result replaces the stored snapshot, so the totals cannot drift.
func RollupPerformance(records []*earnings.Record, now time.Time) driver.Performance {
	stats := func(p earnings.Period) driver.PeriodStats {
		s := earnings.Summarize(records, p, now)
		return driver.PeriodStats{Deliveries: s.Deliveries, Earnings: s.TotalEarnings}
	}

	return driver.Performance{
		Today:      stats(earnings.Today),
		Week:       stats(earnings.Week),
		Month:      stats(earnings.Month),
		ComputedAt: now.UTC(),
	}
}
