package queries

import (
	"context"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/ports"
)

// GetDriversQueryHandler serves the driver registry reads.
type GetDriversQueryHandler struct {
	store      ReadStore
	authorizer ports.Authorizer
}

// NewGetDriversQueryHandler creates the handler.
func NewGetDriversQueryHandler(store ReadStore, authorizer ports.Authorizer) GetDriversQueryHandler {
	return GetDriversQueryHandler{store: store, authorizer: authorizer}
}

// HandleAll returns every driver ordered by name.
func (h GetDriversQueryHandler) HandleAll(ctx context.Context, query GetAllDriversQuery) ([]driver.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionRead, ""); err != nil {
		return nil, err
	}

	drivers, err := h.store.DriverRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return snapshots(drivers), nil
}

// HandleAvailable returns the available drivers ordered by name.
func (h GetDriversQueryHandler) HandleAvailable(
	ctx context.Context,
	query GetAvailableDriversQuery,
) ([]driver.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionRead, ""); err != nil {
		return nil, err
	}

	drivers, err := h.store.DriverRepository().GetByStatus(ctx, driver.Available)
	if err != nil {
		return nil, err
	}
	return snapshots(drivers), nil
}

// HandleByID returns one driver. An unknown id is an ObjectNotFound error.
func (h GetDriversQueryHandler) HandleByID(ctx context.Context, query GetDriverByIDQuery) (driver.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionRead,
		query.DriverID().String()); err != nil {
		return driver.Snapshot{}, err
	}

	d, err := h.store.DriverRepository().Get(ctx, query.DriverID())
	if err != nil {
		return driver.Snapshot{}, err
	}
	return d.Snapshot(), nil
}

func snapshots(drivers []*driver.Driver) []driver.Snapshot {
	result := make([]driver.Snapshot, 0, len(drivers))
	for _, d := range drivers {
		result = append(result, d.Snapshot())
	}
	return result
}
