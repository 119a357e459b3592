package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// UpdateDriverEarningsCommandHandler is the accounting path.
//
// One unit of work appends the ledger entry, applies the running totals and
// replaces the period snapshot with a rollup of the ledger. A tracking record is
// credited at most once; repeating the command for it is a no-op.
type UpdateDriverEarningsCommandHandler struct {
	uowFactory UoWFactory
	commission services.CommissionPolicy
	authorizer ports.Authorizer
	snapshots  snapshots
	metrics    ports.Metrics
	clock      kernel.Clock
	logger     *slog.Logger
}

// NewUpdateDriverEarningsCommandHandler creates the handler.
func NewUpdateDriverEarningsCommandHandler(
	uowFactory UoWFactory,
	commission services.CommissionPolicy,
	authorizer ports.Authorizer,
	publisher ports.SnapshotPublisher,
	metrics ports.Metrics,
	clock kernel.Clock,
	logger *slog.Logger,
) UpdateDriverEarningsCommandHandler {
	logger = componentLogger(logger, "driver-earnings")
	return UpdateDriverEarningsCommandHandler{
		uowFactory: uowFactory,
		commission: commission,
		authorizer: authorizer,
		snapshots:  snapshots{publisher: publisher, logger: logger},
		metrics:    metricsOrNop(metrics),
		clock:      clock,
		logger:     logger,
	}
}

// Handle credits the delivery and returns the updated driver.
func (h UpdateDriverEarningsCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDriverEarningsCommand,
) (driver.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return driver.Snapshot{}, err
	}
	if err := access.Check(ctx, h.authorizer, ports.ResourceEarnings, ports.ActionCreate, ""); err != nil {
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
	ledger := uow.EarningsRepository()

	d, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return driver.Snapshot{}, err
	}

	if tid := cmd.TrackingID(); tid != nil {
		credited, existsErr := ledger.ExistsForTracking(ctx, *tid)
		if existsErr != nil {
			return driver.Snapshot{}, existsErr
		}
		if credited {
			h.logger.InfoContext(ctx, "delivery already credited",
				"driver_id", d.ID().String(), "tracking_id", tid.String())
			return d.Snapshot(), nil
		}
	}

	now := h.clock.Now()
	commission := h.commission.Commission(cmd.OrderValue())

	record, err := earnings.NewRecord(kernel.NewUUID(), d.ID(), cmd.TrackingID(),
		commission, cmd.OrderValue(), cmd.DeliveryMinutes(), now)
	if err != nil {
		return driver.Snapshot{}, err
	}
	if err = ledger.Append(ctx, record); err != nil {
		return driver.Snapshot{}, err
	}

	if err = d.RecordDelivery(commission, cmd.DeliveryMinutes(), now); err != nil {
		return driver.Snapshot{}, err
	}

	records, err := ledger.ListByDriver(ctx, d.ID())
	if err != nil {
		return driver.Snapshot{}, err
	}
	d.ApplyPerformance(services.RollupPerformance(records, now))

	if err = driverRepo.Update(ctx, d); err != nil {
		return driver.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return driver.Snapshot{}, err
	}

	h.metrics.EarningsRecorded(commission.Float64())
	h.snapshots.driver(ctx, d)
	return d.Snapshot(), nil
}
