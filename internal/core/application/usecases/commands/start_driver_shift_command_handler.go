package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// StartDriverShiftCommandHandler opens a shift: the driver goes online with zero
// shift earnings and becomes available unless already busy. Starting twice is a no-op.
type StartDriverShiftCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
}

// NewStartDriverShiftCommandHandler creates the handler.
func NewStartDriverShiftCommandHandler(
	uowFactory DriverUoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) StartDriverShiftCommandHandler {
	return StartDriverShiftCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: componentLogger(logger, "start-driver-shift")},
		clock:      clock,
	}
}

// Handle starts the shift.
func (h StartDriverShiftCommandHandler) Handle(
	ctx context.Context,
	cmd StartDriverShiftCommand,
) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceShifts, ports.ActionUpdate,
		cmd.DriverID().String()); err != nil {
		return driver.Snapshot{}, err
	}

	d, changed, err := mutateDriver(ctx, h.uowFactory, cmd.DriverID(), func(d *driver.Driver) (bool, error) {
		return d.StartShift(h.clock.Now()), nil
	})
	if err != nil {
		return driver.Snapshot{}, err
	}

	if changed {
		h.snapshots.driver(ctx, d)
	}
	return d.Snapshot(), nil
}
