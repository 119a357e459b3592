package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AssignDriverCommandHandler binds a driver to an order.
//
// The tracking record and the busy driver are written in one unit of work. The
// order lives in another subsystem, so its driver link is a separate write made
// after commit and retried. If it still fails the caller gets a PartialFailure
// and may repeat the same command: the live tracking record is found and only
// the missing writes are applied. A delivered order cannot be dispatched again.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	orders     ports.OrderGateway
	places     PlaceResolver
	dispatcher services.DeliveryDispatcher
	authorizer ports.Authorizer
	snapshots  snapshots
	metrics    ports.Metrics
	retry      RetryPolicy
	clock      kernel.Clock
	logger     *slog.Logger
}

// NewAssignDriverCommandHandler creates the handler.
func NewAssignDriverCommandHandler(
	uowFactory UoWFactory,
	orders ports.OrderGateway,
	places PlaceResolver,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	metrics ports.Metrics,
	retry RetryPolicy,
	clock kernel.Clock,
	logger *slog.Logger,
) AssignDriverCommandHandler {
	logger = componentLogger(logger, "assign-driver")
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		orders:     orders,
		places:     places,
		dispatcher: services.NewDeliveryDispatcher(),
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: logger},
		metrics:    metricsOrNop(metrics),
		retry:      retry,
		clock:      clock,
		logger:     logger,
	}
}

// Handle dispatches the driver and returns the live tracking snapshot.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) (tracking.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return tracking.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceTracking, ports.ActionAssign, ""); err != nil {
		return tracking.Snapshot{}, err
	}

	pickup, err := h.places.Resolve(ctx, cmd.Pickup())
	if err != nil {
		return tracking.Snapshot{}, err
	}
	delivery, err := h.places.Resolve(ctx, cmd.Delivery())
	if err != nil {
		return tracking.Snapshot{}, err
	}

	o, err := h.orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return tracking.Snapshot{}, err
	}

	assignment, d, err := h.dispatch(ctx, cmd, func(d *driver.Driver, latest *tracking.DeliveryTracking) (services.Assignment, error) {
		return h.dispatcher.Dispatch(o, d, latest, pickup, delivery, kernel.NewUUID(), h.clock.Now())
	})
	if err != nil {
		if errors.Is(err, errs.ErrStateConflict) {
			h.metrics.DriverDispatched(OutcomeRejected)
		}
		return tracking.Snapshot{}, err
	}

	if assignment.Created || assignment.DriverChanged {
		h.snapshots.driver(ctx, d)
	}
	h.snapshots.tracking(ctx, assignment.Tracking)

	if !o.IsLinkedTo(d.ID()) {
		linkErr := h.retry.run(ctx, func() error {
			return h.orders.LinkDriver(ctx, o.ID(), d.ID())
		})
		if linkErr != nil {
			h.metrics.DriverDispatched(OutcomePartial)
			h.logger.ErrorContext(ctx, "order link failed after dispatch",
				"order_id", o.ID().String(), "driver_id", d.ID().String(),
				"tracking_id", assignment.Tracking.ID().String(), "error", linkErr)
			return assignment.Tracking.Snapshot(), errs.NewPartialFailureError(
				"assignDriverToOrder", []string{"tracking", "driver"}, "order link", linkErr)
		}
	}

	if assignment.Created {
		h.metrics.DriverDispatched(OutcomeCreated)
	} else {
		h.metrics.DriverDispatched(OutcomeRedriven)
	}

	h.logger.InfoContext(ctx, "driver dispatched",
		"order_id", o.ID().String(), "driver_id", d.ID().String(),
		"tracking_id", assignment.Tracking.ID().String(), "created", assignment.Created)
	return assignment.Tracking.Snapshot(), nil
}

func (h AssignDriverCommandHandler) dispatch(
	ctx context.Context,
	cmd AssignDriverCommand,
	decide func(d *driver.Driver, latest *tracking.DeliveryTracking) (services.Assignment, error),
) (services.Assignment, *driver.Driver, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Assignment{}, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	trackingRepo := uow.TrackingRepository()

	d, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return services.Assignment{}, nil, err
	}

	latest, err := trackingRepo.GetLatestByOrder(ctx, cmd.OrderID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		latest = nil
	case err != nil:
		return services.Assignment{}, nil, err
	}

	assignment, err := decide(d, latest)
	if err != nil {
		return services.Assignment{}, nil, err
	}

	if assignment.Created {
		if err = trackingRepo.Add(ctx, assignment.Tracking); err != nil {
			return services.Assignment{}, nil, err
		}
	}
	if assignment.DriverChanged {
		if err = driverRepo.Update(ctx, d); err != nil {
			return services.Assignment{}, nil, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Assignment{}, nil, err
	}
	return assignment, d, nil
}
