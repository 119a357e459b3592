package queries

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SubscribeQueryHandler attaches observers to tracking and driver snapshots.
// Every stream starts with the current state, when there is one, followed by
// live updates. A stream closes when ctx ends.
type SubscribeQueryHandler struct {
	store      ReadStore
	subscriber ports.SnapshotSubscriber
	authorizer ports.Authorizer
}

// NewSubscribeQueryHandler creates the handler.
func NewSubscribeQueryHandler(
	store ReadStore,
	subscriber ports.SnapshotSubscriber,
	authorizer ports.Authorizer,
) SubscribeQueryHandler {
	return SubscribeQueryHandler{store: store, subscriber: subscriber, authorizer: authorizer}
}

// HandleTracking streams the order's tracking snapshots. An order that was not
// dispatched yet gets an empty stream that fills once a driver is assigned.
func (h SubscribeQueryHandler) HandleTracking(
	ctx context.Context,
	query SubscribeToDeliveryTrackingQuery,
) (<-chan tracking.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceTracking, ports.ActionRead, ""); err != nil {
		return nil, err
	}

	// Subscribe before loading so no update falls between the two.
	subCtx, cancel := context.WithCancel(ctx)
	updates := h.subscriber.SubscribeTracking(subCtx, query.OrderID())

	var initial *tracking.Snapshot
	tr, err := h.store.TrackingRepository().GetLatestByOrder(ctx, query.OrderID())
	switch {
	case err == nil:
		s := tr.Snapshot()
		initial = &s
	case errors.Is(err, errs.ErrObjectNotFound):
	default:
		cancel()
		return nil, err
	}

	return follow(subCtx, cancel, updates, initial, func(s tracking.Snapshot) time.Time {
		return s.UpdatedAt
	}), nil
}

// HandleDriver streams the driver's snapshots. An unknown driver is an
// ObjectNotFound error.
func (h SubscribeQueryHandler) HandleDriver(
	ctx context.Context,
	query SubscribeToDriverQuery,
) (<-chan driver.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionRead,
		query.DriverID().String()); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	updates := h.subscriber.SubscribeDriver(subCtx, query.DriverID())

	d, err := h.store.DriverRepository().Get(ctx, query.DriverID())
	if err != nil {
		cancel()
		return nil, err
	}
	initial := d.Snapshot()

	return follow(subCtx, cancel, updates, &initial, func(s driver.Snapshot) time.Time {
		return s.UpdatedAt
	}), nil
}

// follow relays updates behind an optional initial value. It holds at most one
// undelivered value, so a slow reader sees only the newest state, and it drops
// values stamped earlier than the last one accepted.
func follow[T any](
	ctx context.Context,
	stop context.CancelFunc,
	updates <-chan T,
	initial *T,
	stamp func(T) time.Time,
) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)
		defer stop()

		var (
			pending *T
			last    time.Time
		)
		if initial != nil {
			v := *initial
			pending = &v
			last = stamp(v)
		}

		in := updates
		for {
			if in == nil && pending == nil {
				return
			}

			var (
				send chan<- T
				next T
			)
			if pending != nil {
				send = out
				next = *pending
			}

			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					in = nil
					continue
				}
				if stamp(v).Before(last) {
					continue
				}
				last = stamp(v)
				pending = &v
			case send <- next:
				pending = nil
			}
		}
	}()

	return out
}
