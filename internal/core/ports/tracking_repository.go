package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
)

// TrackingRepository defines the persistence contract for delivery tracking records.
// Records are never deleted.
type TrackingRepository interface {
	// Add persists a new tracking record.
	Add(ctx context.Context, aggregate *tracking.DeliveryTracking) error

	// Update persists changes to an existing tracking record.
	Update(ctx context.Context, aggregate *tracking.DeliveryTracking) error

	// Get retrieves a tracking record by identifier.
	// Returns ObjectNotFound if it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*tracking.DeliveryTracking, error)

	// GetLiveByOrder retrieves the order's non-delivered tracking record.
	// Returns ObjectNotFound if the order has none.
	GetLiveByOrder(ctx context.Context, orderID kernel.UUID) (*tracking.DeliveryTracking, error)

	// GetLiveByDriver retrieves the driver's non-delivered tracking record.
	// Returns ObjectNotFound if the driver has none.
	GetLiveByDriver(ctx context.Context, driverID kernel.UUID) (*tracking.DeliveryTracking, error)

	// GetLatestByOrder retrieves the most recently created tracking record of an order,
	// delivered or not. Returns ObjectNotFound if the order was never dispatched.
	GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*tracking.DeliveryTracking, error)

	// CountByOrder returns how many tracking records reference the order.
	CountByOrder(ctx context.Context, orderID kernel.UUID) (int64, error)
}
