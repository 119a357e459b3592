package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
)

// snapshots publishes committed state to observers. Publishing is best effort:
// a failure is logged and never undoes or fails the committed write.
type snapshots struct {
	publisher ports.SnapshotPublisher
	logger    *slog.Logger
}

func (s snapshots) driver(ctx context.Context, d *driver.Driver) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDriver(ctx, d.Snapshot()); err != nil {
		s.logger.WarnContext(ctx, "failed to publish driver snapshot",
			"driver_id", d.ID().String(), "error", err)
	}
}

func (s snapshots) tracking(ctx context.Context, t *tracking.DeliveryTracking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTracking(ctx, t.Snapshot()); err != nil {
		s.logger.WarnContext(ctx, "failed to publish tracking snapshot",
			"tracking_id", t.ID().String(), "order_id", t.OrderID().String(), "error", err)
	}
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}
