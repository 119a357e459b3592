package orderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dbctx"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderGateway implements ports.OrderGateway on the shared orders table.
// It always runs on its own connection: linking is independent of the
// dispatch unit of work.
type GormOrderGateway struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormOrderGateway creates a gateway on db.
func NewGormOrderGateway(db *gorm.DB, timeout time.Duration) *GormOrderGateway {
	return &GormOrderGateway{
		db:      db,
		timeout: timeout,
	}
}

// Add inserts an order.
func (g *GormOrderGateway) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, g.db, g.timeout)
	defer cancel()

	dto := FromDomain(aggregate)
	return db.Create(&dto).Error
}

// Get retrieves an order by ID.
func (g *GormOrderGateway) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db, cancel := dbctx.Scope(ctx, g.db, g.timeout)
	defer cancel()

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// LinkDriver records driverID on the order. Linking the same driver again is a no-op;
// an order already linked to another driver is a state conflict.
func (g *GormOrderGateway) LinkDriver(ctx context.Context, orderID, driverID kernel.UUID) error {
	if err := errors.Join(orderID.Validate(), driverID.Validate()); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, g.db, g.timeout)
	defer cancel()

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND (driver_id IS NULL OR driver_id = ?)", orderID.Bytes(), driverID.Bytes()).
		Update("driver_id", driverID.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("order", orderID.String())
		}
		return err
	}

	o, err := toDomain(dto)
	if err != nil {
		return err
	}
	_, err = o.LinkDriver(driverID)
	return err
}
