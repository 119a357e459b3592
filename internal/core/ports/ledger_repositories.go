package ports

import (
	"context"

	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/shift"
)

// EarningsRepository is the append-only earnings ledger.
type EarningsRepository interface {
	// Append stores a new ledger entry.
	Append(ctx context.Context, record *earnings.Record) error

	// ExistsForTracking reports whether a delivery was already credited.
	ExistsForTracking(ctx context.Context, trackingID kernel.UUID) (bool, error)

	// ListByDriver returns every entry of a driver, newest first.
	ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*earnings.Record, error)
}

// ShiftRepository is the append-only shift ledger.
type ShiftRepository interface {
	// Append stores a completed shift.
	Append(ctx context.Context, entry *shift.Shift) error

	// ListByDriver returns every shift of a driver, newest first.
	ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*shift.Shift, error)
}
