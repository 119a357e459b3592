package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDriverStatusCommandHandler is a single-field idempotent write. It does
// not reconcile the status with live tracking records; busy is normally entered
// and left through dispatch and delivery completion.
type UpdateDriverStatusCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
}

// NewUpdateDriverStatusCommandHandler creates the handler.
func NewUpdateDriverStatusCommandHandler(
	uowFactory DriverUoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateDriverStatusCommandHandler {
	return UpdateDriverStatusCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: componentLogger(logger, "update-driver-status")},
		clock:      clock,
	}
}

// Handle sets the status and publishes the driver snapshot when it changed.
func (h UpdateDriverStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDriverStatusCommand,
) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionSetStatus,
		cmd.DriverID().String()); err != nil {
		return driver.Snapshot{}, err
	}

	d, changed, err := mutateDriver(ctx, h.uowFactory, cmd.DriverID(), func(d *driver.Driver) (bool, error) {
		if d.Status() == cmd.Status() {
			return false, nil
		}
		return true, d.SetStatus(cmd.Status(), h.clock.Now())
	})
	if err != nil {
		return driver.Snapshot{}, err
	}

	if changed {
		h.snapshots.driver(ctx, d)
	}
	return d.Snapshot(), nil
}
