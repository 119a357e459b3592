// Package realtime fans tracking and driver snapshots out to observers. The Hub
// serves observers of this process; the RedisRelay carries snapshots between
// instances so an observer sees every update whichever instance wrote it.
package realtime

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/pubsub"
)

// Hub is the in-process snapshot broker. Tracking snapshots are keyed by order,
// driver snapshots by driver.
type Hub struct {
	tracking *pubsub.Broker[tracking.Snapshot]
	drivers  *pubsub.Broker[driver.Snapshot]
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		tracking: pubsub.NewBroker[tracking.Snapshot](),
		drivers:  pubsub.NewBroker[driver.Snapshot](),
	}
}

func (h *Hub) PublishTracking(_ context.Context, snapshot tracking.Snapshot) error {
	h.tracking.Publish(snapshot.OrderID.String(), snapshot)
	return nil
}

func (h *Hub) PublishDriver(_ context.Context, snapshot driver.Snapshot) error {
	h.drivers.Publish(snapshot.ID.String(), snapshot)
	return nil
}

func (h *Hub) SubscribeTracking(ctx context.Context, orderID kernel.UUID) <-chan tracking.Snapshot {
	return h.tracking.Subscribe(ctx, orderID.String())
}

func (h *Hub) SubscribeDriver(ctx context.Context, driverID kernel.UUID) <-chan driver.Snapshot {
	return h.drivers.Subscribe(ctx, driverID.String())
}

// Observers returns the number of live subscriptions on an order's tracking.
func (h *Hub) Observers(orderID kernel.UUID) int {
	return h.tracking.Subscribers(orderID.String())
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.tracking.Close()
	h.drivers.Close()
}

// Fanout publishes to several publishers in order. Every publisher is tried;
// their failures are joined.
type Fanout []ports.SnapshotPublisher

func (f Fanout) PublishTracking(ctx context.Context, snapshot tracking.Snapshot) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishTracking(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) PublishDriver(ctx context.Context, snapshot driver.Snapshot) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.PublishDriver(ctx, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
