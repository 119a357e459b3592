package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Location pipeline defaults.
const (
	DefaultPingDebounce         = 2 * time.Second
	DefaultNotificationInterval = 5 * time.Minute
)

// PingPolicy tunes the location pipeline.
type PingPolicy struct {
	// Debounce drops fixes that arrive within this window of the last accepted one.
	Debounce time.Duration
	// NotificationInterval is the minimum gap between two ETA notifications of an order.
	NotificationInterval time.Duration
}

// DefaultPingPolicy returns the 2s debounce and 5min notification throttle.
func DefaultPingPolicy() PingPolicy {
	return PingPolicy{Debounce: DefaultPingDebounce, NotificationInterval: DefaultNotificationInterval}
}

// LocationPingResult reports what a ping changed.
type LocationPingResult struct {
	Accepted bool
	// Tracking is the live tracking record the ping moved, if any.
	Tracking *tracking.Snapshot
	ETA      *services.ETA
}

// RecordLocationPingCommandHandler runs the location and ETA pipeline.
//
// An accepted fix replaces the driver's location. When the driver is on a live
// delivery the tracking record follows and its ETA is recomputed toward the
// pickup before picked_up and toward the delivery address afterwards. The order's
// customer is notified at most once per NotificationInterval; notifier and
// throttle failures are logged and never fail the ping.
type RecordLocationPingCommandHandler struct {
	uowFactory UoWFactory
	calculator services.ETACalculator
	notifier   ports.Notifier
	throttle   ports.NotificationThrottle
	authorizer ports.Authorizer
	snapshots  snapshots
	metrics    ports.Metrics
	policy     PingPolicy
	clock      kernel.Clock
	logger     *slog.Logger
}

// NewRecordLocationPingCommandHandler creates the handler. notifier and throttle may be nil.
func NewRecordLocationPingCommandHandler(
	uowFactory UoWFactory,
	calculator services.ETACalculator,
	notifier ports.Notifier,
	throttle ports.NotificationThrottle,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	metrics ports.Metrics,
	policy PingPolicy,
	clock kernel.Clock,
	logger *slog.Logger,
) RecordLocationPingCommandHandler {
	logger = componentLogger(logger, "location-ping")
	return RecordLocationPingCommandHandler{
		uowFactory: uowFactory,
		calculator: calculator,
		notifier:   notifier,
		throttle:   throttle,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: logger},
		metrics:    metricsOrNop(metrics),
		policy:     policy,
		clock:      clock,
		logger:     logger,
	}
}

// Handle processes one ping.
func (h RecordLocationPingCommandHandler) Handle(
	ctx context.Context,
	cmd RecordLocationPingCommand,
) (LocationPingResult, error) {
	if err := cmd.Validate(); err != nil {
		return LocationPingResult{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionUpdate,
		cmd.DriverID().String()); err != nil {
		return LocationPingResult{}, err
	}

	d, live, eta, err := h.apply(ctx, cmd)
	if err != nil {
		return LocationPingResult{}, err
	}
	if d == nil {
		h.metrics.PingProcessed(false)
		return LocationPingResult{}, nil
	}

	h.metrics.PingProcessed(true)
	h.snapshots.driver(ctx, d)

	result := LocationPingResult{Accepted: true}
	if live != nil {
		h.metrics.ETACalculated(eta.Minutes)
		h.snapshots.tracking(ctx, live)
		h.notify(ctx, live.OrderID(), eta)

		snapshot := live.Snapshot()
		result.Tracking = &snapshot
		result.ETA = &eta
	}
	return result, nil
}

// apply returns a nil driver when the ping was dropped.
func (h RecordLocationPingCommandHandler) apply(
	ctx context.Context,
	cmd RecordLocationPingCommand,
) (*driver.Driver, *tracking.DeliveryTracking, services.ETA, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, services.ETA{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	d, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, nil, services.ETA{}, err
	}

	now := h.clock.Now()
	if !d.AcceptPing(cmd.Position(), h.policy.Debounce, now) {
		return nil, nil, services.ETA{}, nil
	}
	if err = driverRepo.Update(ctx, d); err != nil {
		return nil, nil, services.ETA{}, err
	}

	trackingRepo := uow.TrackingRepository()
	live, err := trackingRepo.GetLiveByDriver(ctx, d.ID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		live = nil
	case err != nil:
		return nil, nil, services.ETA{}, err
	}

	var eta services.ETA
	if live != nil {
		location := cmd.Position().Location()
		live.MoveTo(location, now)
		eta = h.calculator.Calculate(location, live.Target().Location())
		live.ApplyETA(eta.DistanceKm, eta.Minutes, now)
		if err = trackingRepo.Update(ctx, live); err != nil {
			return nil, nil, services.ETA{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, services.ETA{}, err
	}
	return d, live, eta, nil
}

func (h RecordLocationPingCommandHandler) notify(ctx context.Context, orderID kernel.UUID, eta services.ETA) {
	if h.notifier == nil {
		return
	}
	logger := h.logger.With("order_id", orderID.String())

	if h.throttle != nil {
		allowed, err := h.throttle.Allow(ctx, "eta:"+orderID.String(), h.policy.NotificationInterval)
		if err != nil {
			h.metrics.NotificationSent(OutcomeFailed)
			logger.WarnContext(ctx, "notification throttle unavailable, skipping ETA notification", "error", err)
			return
		}
		if !allowed {
			h.metrics.NotificationSent(OutcomeThrottled)
			return
		}
	}

	message := fmt.Sprintf("Your driver is %s away (%s)", eta.DurationText, eta.DistanceText)
	if err := h.notifier.Notify(ctx, orderID, message); err != nil {
		h.metrics.NotificationSent(OutcomeFailed)
		logger.WarnContext(ctx, "ETA notification failed", "error", err)
		return
	}
	h.metrics.NotificationSent(OutcomeSent)
}
