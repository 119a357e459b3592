package trackingrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dbctx"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTrackingRepository implements ports.TrackingRepository using GORM.
type GormTrackingRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormTrackingRepository creates a repository on db.
func NewGormTrackingRepository(db *gorm.DB, timeout time.Duration) *GormTrackingRepository {
	return &GormTrackingRepository{
		db:      db,
		timeout: timeout,
	}
}

// Add inserts a new record. A second live record for the same order violates
// idx_tracking_live_order and is reported as a state conflict.
func (r *GormTrackingRepository) Add(ctx context.Context, aggregate *tracking.DeliveryTracking) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause("tracking", "live", "second live record", err)
		}
		return err
	}

	return nil
}

// Update overwrites every column of an existing record.
func (r *GormTrackingRepository) Update(ctx context.Context, aggregate *tracking.DeliveryTracking) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	result := db.Model(&TrackingDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("tracking", aggregate.ID().String())
	}

	return nil
}

// Get retrieves a record by ID.
func (r *GormTrackingRepository) Get(ctx context.Context, id kernel.UUID) (*tracking.DeliveryTracking, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, "tracking", id.String(), "id = ?", id.Bytes())
}

// GetLiveByOrder retrieves the order's record that has not been delivered yet.
func (r *GormTrackingRepository) GetLiveByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, "live tracking for order", orderID.String(),
		"order_id = ? AND status <> ?", orderID.Bytes(), tracking.Delivered.String())
}

// GetLiveByDriver retrieves the newest undelivered record bound to the driver.
func (r *GormTrackingRepository) GetLiveByDriver(
	ctx context.Context,
	driverID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, "live tracking for driver", driverID.String(),
		"driver_id = ? AND status <> ?", driverID.Bytes(), tracking.Delivered.String())
}

// GetLatestByOrder retrieves the newest record of the order, live or delivered.
func (r *GormTrackingRepository) GetLatestByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, "tracking for order", orderID.String(), "order_id = ?", orderID.Bytes())
}

// CountByOrder returns how many records the order has.
func (r *GormTrackingRepository) CountByOrder(ctx context.Context, orderID kernel.UUID) (int64, error) {
	if err := orderID.Validate(); err != nil {
		return 0, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var count int64
	if err := db.Model(&TrackingDTO{}).Where("order_id = ?", orderID.Bytes()).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *GormTrackingRepository) first(
	ctx context.Context,
	param, id string,
	query string,
	args ...any,
) (*tracking.DeliveryTracking, error) {
	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dto TrackingDTO
	err := db.Where(query, args...).Order("created_at DESC").Order("id").Take(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, id)
		}
		return nil, err
	}

	return toDomain(dto)
}
