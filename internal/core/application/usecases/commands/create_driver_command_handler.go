package commands

import (
	"context"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// CreateDriverCommandHandler persists a newly registered driver. New drivers
// start offline until they open a shift.
type CreateDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
	clock      kernel.Clock
}

// NewCreateDriverCommandHandler creates a handler for driver registration.
func NewCreateDriverCommandHandler(
	uowFactory DriverUoWFactory,
	authorizer ports.Authorizer,
	clock kernel.Clock,
) CreateDriverCommandHandler {
	return CreateDriverCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		clock:      clock,
	}
}

// Handle creates the driver and returns its first snapshot.
func (h CreateDriverCommandHandler) Handle(ctx context.Context, cmd CreateDriverCommand) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionCreate, ""); err != nil {
		return driver.Snapshot{}, err
	}

	d, err := driver.NewDriver(cmd.DriverID(), cmd.Profile(), h.clock.Now())
	if err != nil {
		return driver.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return driver.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DriverRepository().Add(ctx, d); err != nil {
		return driver.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return driver.Snapshot{}, err
	}

	return d.Snapshot(), nil
}
