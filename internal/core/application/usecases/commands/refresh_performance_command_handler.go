package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// RefreshPerformanceCommandHandler rolls today, week and month totals over when
// the periods change. Each driver is refreshed in its own unit of work so one
// failure does not hold back the rest.
type RefreshPerformanceCommandHandler struct {
	uowFactory UoWFactory
	authorizer ports.Authorizer
	snapshots  snapshots
	clock      kernel.Clock
	logger     *slog.Logger
}

// NewRefreshPerformanceCommandHandler creates the handler.
func NewRefreshPerformanceCommandHandler(
	uowFactory UoWFactory,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	clock kernel.Clock,
	logger *slog.Logger,
) RefreshPerformanceCommandHandler {
	logger = componentLogger(logger, "refresh-performance")
	return RefreshPerformanceCommandHandler{
		uowFactory: uowFactory,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: logger},
		clock:      clock,
		logger:     logger,
	}
}

// Handle refreshes all drivers and returns how many were updated.
func (h RefreshPerformanceCommandHandler) Handle(ctx context.Context, cmd RefreshPerformanceCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceDrivers, ports.ActionUpdate, ""); err != nil {
		return 0, err
	}

	drivers, err := h.uowFactory.Create().DriverRepository().GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var (
		refreshed int
		failures  []error
	)
	for _, d := range drivers {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		updated, refreshErr := h.refresh(ctx, d.ID())
		if refreshErr != nil {
			h.logger.WarnContext(ctx, "performance refresh failed",
				"driver_id", d.ID().String(), "error", refreshErr)
			failures = append(failures, fmt.Errorf("driver %s: %w", d.ID(), refreshErr))
			continue
		}
		refreshed++
		h.snapshots.driver(ctx, updated)
	}

	h.logger.InfoContext(ctx, "performance refreshed", "drivers", refreshed, "failed", len(failures))
	return refreshed, errors.Join(failures...)
}

func (h RefreshPerformanceCommandHandler) refresh(ctx context.Context, driverID kernel.UUID) (*driver.Driver, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	d, err := driverRepo.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	records, err := uow.EarningsRepository().ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	d.ApplyPerformance(services.RollupPerformance(records, h.clock.Now()))

	if err = driverRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}
