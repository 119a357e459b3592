// Package queries contains read operations for retrieving system state.
// Queries return snapshots and read models; none of them write.
package queries

import (
	"dispatch/internal/core/ports"
)

// ReadStore exposes the repositories queries read from. Reads run outside any
// transaction.
type ReadStore interface {
	DriverRepository() ports.DriverRepository
	TrackingRepository() ports.TrackingRepository
	EarningsRepository() ports.EarningsRepository
}
