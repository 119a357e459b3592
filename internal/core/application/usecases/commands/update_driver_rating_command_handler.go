package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDriverRatingCommandHandler folds a rating into the driver's running
// sum and count, so the stored rating is always the mean of all ratings.
type UpdateDriverRatingCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
}

// NewUpdateDriverRatingCommandHandler creates the handler.
func NewUpdateDriverRatingCommandHandler(
	uowFactory DriverUoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateDriverRatingCommandHandler {
	return UpdateDriverRatingCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: componentLogger(logger, "update-driver-rating")},
		clock:      clock,
	}
}

// Handle records the rating.
func (h UpdateDriverRatingCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDriverRatingCommand,
) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionRate, ""); err != nil {
		return driver.Snapshot{}, err
	}

	d, _, err := mutateDriver(ctx, h.uowFactory, cmd.DriverID(), func(d *driver.Driver) (bool, error) {
		return true, d.Rate(cmd.Rating(), h.clock.Now())
	})
	if err != nil {
		return driver.Snapshot{}, err
	}

	h.snapshots.driver(ctx, d)
	return d.Snapshot(), nil
}
