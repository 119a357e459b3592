package commands

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// mutateDriver loads a driver, applies change and saves it in one unit of work.
// change reports whether it modified the driver; unchanged drivers are not written.
func mutateDriver(
	ctx context.Context,
	uowFactory DriverUoWFactory,
	driverID kernel.UUID,
	change func(d *driver.Driver) (bool, error),
) (*driver.Driver, bool, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.DriverRepository()
	d, err := repo.Get(ctx, driverID)
	if err != nil {
		return nil, false, err
	}

	changed, err := change(d)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return d, false, nil
	}

	if err = repo.Update(ctx, d); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return d, true, nil
}
