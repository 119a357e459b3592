package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
)

// OrderGateway reaches the ordering subsystem that owns orders.
type OrderGateway interface {
	// Get retrieves an order. Returns ObjectNotFound if it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// LinkDriver records the driver on the order. Linking the same driver twice is a no-op;
	// linking a different one returns StateConflict.
	LinkDriver(ctx context.Context, orderID, driverID kernel.UUID) error
}

// Geocoder resolves a postal address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.Location, error)
}

// Notifier delivers a fire-and-forget push message about an order.
type Notifier interface {
	Notify(ctx context.Context, orderID kernel.UUID, message string) error
}

// NotificationThrottle limits how often a key may fire.
type NotificationThrottle interface {
	// Allow reports whether key may fire now. A true result reserves the key for interval.
	Allow(ctx context.Context, key string, interval time.Duration) (bool, error)
}

// SnapshotPublisher fans full-state snapshots out to observers.
type SnapshotPublisher interface {
	PublishTracking(ctx context.Context, snapshot tracking.Snapshot) error
	PublishDriver(ctx context.Context, snapshot driver.Snapshot) error
}

// SnapshotSubscriber attaches observers to the snapshot stream of one record.
// Channels close when ctx ends.
type SnapshotSubscriber interface {
	SubscribeTracking(ctx context.Context, orderID kernel.UUID) <-chan tracking.Snapshot
	SubscribeDriver(ctx context.Context, driverID kernel.UUID) <-chan driver.Snapshot
}

// EarningsTask asks the accounting path to credit one delivery. The order total
// is resolved when the task runs, so a failed lookup is retried with the task.
type EarningsTask struct {
	DriverID        kernel.UUID `json:"driverId"`
	TrackingID      kernel.UUID `json:"trackingId"`
	OrderID         kernel.UUID `json:"orderId"`
	DeliveryMinutes float64     `json:"deliveryMinutes"`
}

// EarningsScheduler hands completed deliveries to the accounting path.
// Implementations may run the task inline or enqueue it for a worker.
type EarningsScheduler interface {
	ScheduleEarnings(ctx context.Context, task EarningsTask) error
}
