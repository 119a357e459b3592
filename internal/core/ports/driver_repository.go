// Package ports defines the contracts between the dispatch core and its adapters:
// repositories and the unit of work over the data store, and the external
// collaborators for orders, geocoding, notifications, authorization, real-time
// fan-out, asynchronous accounting and metrics.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add persists a new driver.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists changes to an existing driver.
	// Returns ObjectNotFound if the driver does not exist.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver by identifier.
	// Returns ObjectNotFound if the driver does not exist.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAll retrieves every driver ordered by name.
	GetAll(ctx context.Context) ([]*driver.Driver, error)

	// GetByStatus retrieves drivers in the given status ordered by name.
	GetByStatus(ctx context.Context, status driver.Status) ([]*driver.Driver, error)

	// Delete removes a driver permanently.
	// Returns ObjectNotFound if the driver does not exist.
	Delete(ctx context.Context, id kernel.UUID) error
}
