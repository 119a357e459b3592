package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/shift"
	"dispatch/internal/core/ports"
)

// EndDriverShiftCommandHandler closes the open shift, appends it to the shift
// ledger and takes the driver offline in one unit of work.
//
// Rules:
//   - no open shift: no-op, nothing is written
//   - busy driver: StateConflict; busy is only left by completing the delivery
type EndDriverShiftCommandHandler struct {
	uowFactory UoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
}

// NewEndDriverShiftCommandHandler creates the handler.
func NewEndDriverShiftCommandHandler(
	uowFactory UoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) EndDriverShiftCommandHandler {
	return EndDriverShiftCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: componentLogger(logger, "end-driver-shift")},
		clock:      clock,
	}
}

// Handle ends the shift. The returned snapshot carries the closed shift's hours
// and earnings.
func (h EndDriverShiftCommandHandler) Handle(ctx context.Context, cmd EndDriverShiftCommand) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceShifts, ports.ActionUpdate,
		cmd.DriverID().String()); err != nil {
		return driver.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return driver.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	d, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return driver.Snapshot{}, err
	}

	closed, err := d.EndShift(h.clock.Now())
	if err != nil {
		return driver.Snapshot{}, err
	}
	if closed == nil {
		return d.Snapshot(), nil
	}

	entry, err := shift.New(kernel.NewUUID(), d.ID(), closed.StartTime, closed.EndTime, closed.TotalHours, closed.Earnings)
	if err != nil {
		return driver.Snapshot{}, err
	}

	if err = uow.ShiftRepository().Append(ctx, entry); err != nil {
		return driver.Snapshot{}, err
	}

	if err = driverRepo.Update(ctx, d); err != nil {
		return driver.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return driver.Snapshot{}, err
	}

	h.snapshots.driver(ctx, d)
	return d.Snapshot(), nil
}
