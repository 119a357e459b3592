package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDriverLocationCommandHandler stores a position unconditionally.
type UpdateDriverLocationCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
}

// NewUpdateDriverLocationCommandHandler creates the handler.
func NewUpdateDriverLocationCommandHandler(
	uowFactory DriverUoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: componentLogger(logger, "update-driver-location")},
		clock:      clock,
	}
}

// Handle overwrites the position and publishes the driver snapshot.
func (h UpdateDriverLocationCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDriverLocationCommand,
) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionUpdate,
		cmd.DriverID().String()); err != nil {
		return driver.Snapshot{}, err
	}

	d, _, err := mutateDriver(ctx, h.uowFactory, cmd.DriverID(), func(d *driver.Driver) (bool, error) {
		d.UpdateLocation(cmd.Position(), h.clock.Now())
		return true, nil
	})
	if err != nil {
		return driver.Snapshot{}, err
	}

	h.snapshots.driver(ctx, d)
	return d.Snapshot(), nil
}
