package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateDeliveryStatusCommandHandler drives the delivery state machine.
//
// Delivered releases the driver in the same unit of work as the status change.
// Accounting is scheduled after commit; a scheduling failure is logged, retried
// in the background and never fails or undoes the transition. Repeating
// delivered re-drives the driver release and the accounting, which is
// idempotent per tracking record.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	scheduler  ports.EarningsScheduler
	authorizer ports.Authorizer
	snapshots  snapshots
	metrics    ports.Metrics
	retry      RetryPolicy
	clock      kernel.Clock
	logger     *slog.Logger
}

// NewUpdateDeliveryStatusCommandHandler creates the handler.
func NewUpdateDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	scheduler ports.EarningsScheduler,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	metrics ports.Metrics,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateDeliveryStatusCommandHandler {
	logger = componentLogger(logger, "update-delivery-status")
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: logger},
		metrics:    metricsOrNop(metrics),
		retry:      EarningsRetryPolicy(),
		clock:      clock,
		logger:     logger,
	}
}

// WithEarningsRetry returns a copy of the handler that re-drives failed
// accounting hand-offs with policy.
func (h UpdateDeliveryStatusCommandHandler) WithEarningsRetry(policy RetryPolicy) UpdateDeliveryStatusCommandHandler {
	h.retry = policy
	return h
}

type transition struct {
	tracking      *tracking.DeliveryTracking
	driver        *driver.Driver
	statusChanged bool
	written       bool
	driverChanged bool
}

// Handle applies the transition and returns the tracking snapshot.
func (h UpdateDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDeliveryStatusCommand,
) (tracking.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return tracking.Snapshot{}, err
	}

	result, err := h.apply(ctx, cmd)
	if err != nil {
		return tracking.Snapshot{}, err
	}

	tr := result.tracking
	if result.written {
		h.snapshots.tracking(ctx, tr)
	}
	if result.driverChanged {
		h.snapshots.driver(ctx, result.driver)
	}
	if result.statusChanged {
		h.metrics.DeliveryTransitioned(tr.Status().String())
		h.logger.InfoContext(ctx, "delivery status changed",
			"tracking_id", tr.ID().String(), "order_id", tr.OrderID().String(), "status", tr.Status().String())
	}

	if tr.Status() == tracking.Delivered {
		h.scheduleEarnings(ctx, tr)
	}

	return tr.Snapshot(), nil
}

func (h UpdateDeliveryStatusCommandHandler) apply(
	ctx context.Context,
	cmd UpdateDeliveryStatusCommand,
) (transition, error) {
	if err := access.CheckRole(ctx, h.authorizer, ports.ResourceTracking, ports.ActionUpdate); err != nil {
		return transition{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return transition{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	trackingRepo := uow.TrackingRepository()
	tr, err := trackingRepo.Get(ctx, cmd.TrackingID())
	if err != nil {
		return transition{}, err
	}

	if err = access.Check(ctx, h.authorizer, ports.ResourceTracking, ports.ActionUpdate,
		tr.DriverID().String()); err != nil {
		return transition{}, err
	}

	now := h.clock.Now()
	changed, err := tr.Advance(cmd.Status(), cmd.Location(), now)
	if err != nil {
		return transition{}, err
	}

	result := transition{
		tracking:      tr,
		statusChanged: changed,
		written:       changed || cmd.Location() != nil,
	}

	if result.written {
		if err = trackingRepo.Update(ctx, tr); err != nil {
			return transition{}, err
		}
	}

	if tr.Status() == tracking.Delivered {
		if result.driver, result.driverChanged, err = h.release(ctx, uow, tr, now); err != nil {
			return transition{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return transition{}, err
	}
	return result, nil
}

// release frees the delivering driver unless a re-driven completion finds the
// driver already out on another live delivery.
func (h UpdateDeliveryStatusCommandHandler) release(
	ctx context.Context,
	uow UoW,
	tr *tracking.DeliveryTracking,
	now time.Time,
) (*driver.Driver, bool, error) {
	driverRepo := uow.DriverRepository()
	d, err := driverRepo.Get(ctx, tr.DriverID())
	if err != nil {
		return nil, false, err
	}

	_, err = uow.TrackingRepository().GetLiveByDriver(ctx, d.ID())
	switch {
	case err == nil:
		return d, false, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, false, err
	}

	if !d.Release(now) {
		return d, false, nil
	}
	if err = driverRepo.Update(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// scheduleEarnings hands the delivery to the accounting path. When the hand-off
// fails it is retried in the background with a context detached from the
// request.
func (h UpdateDeliveryStatusCommandHandler) scheduleEarnings(ctx context.Context, tr *tracking.DeliveryTracking) {
	if h.scheduler == nil {
		return
	}

	minutes, _ := tr.DeliveryMinutes()
	task := ports.EarningsTask{
		DriverID:        tr.DriverID(),
		TrackingID:      tr.ID(),
		OrderID:         tr.OrderID(),
		DeliveryMinutes: minutes,
	}
	logger := h.logger.With("tracking_id", tr.ID().String(), "order_id", tr.OrderID().String())

	err := h.scheduler.ScheduleEarnings(ctx, task)
	if err == nil {
		return
	}
	logger.ErrorContext(ctx, "failed to schedule earnings, retrying in background", "error", err)

	go func(ctx context.Context) {
		if err := h.retry.run(ctx, func() error {
			return h.scheduler.ScheduleEarnings(ctx, task)
		}); err != nil {
			logger.ErrorContext(ctx, "giving up on scheduling earnings", "error", err)
			return
		}
		logger.InfoContext(ctx, "earnings scheduled after retry")
	}(context.WithoutCancel(ctx))
}
