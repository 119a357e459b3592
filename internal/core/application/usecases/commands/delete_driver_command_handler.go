package commands

import (
	"context"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// DeleteDriverCommandHandler hard-deletes a driver. A busy driver is bound to a
// live delivery and cannot be removed until it completes. Earnings and shift
// ledgers keep their rows.
type DeleteDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	authorizer ports.Authorizer
}

// NewDeleteDriverCommandHandler creates the handler.
func NewDeleteDriverCommandHandler(uowFactory DriverUoWFactory, authorizer ports.Authorizer) DeleteDriverCommandHandler {
	return DeleteDriverCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
	}
}

// Handle deletes the driver.
func (h DeleteDriverCommandHandler) Handle(ctx context.Context, cmd DeleteDriverCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionDelete, ""); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DriverRepository()
	d, err := repo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}
	if d.Status() == driver.Busy {
		return errs.NewStateConflictError("driver", driver.Busy.String(), "deleted")
	}

	if err = repo.Delete(ctx, cmd.DriverID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
