package driverrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dbctx"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDriverRepository implements ports.DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormDriverRepository creates a repository on db. Every call is bounded by timeout
// when it is positive.
func NewGormDriverRepository(db *gorm.DB, timeout time.Duration) *GormDriverRepository {
	return &GormDriverRepository{
		db:      db,
		timeout: timeout,
	}
}

// Add inserts a new driver.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	return db.Create(&dto).Error
}

// Update overwrites every column of an existing driver.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := fromDomain(aggregate)
	result := db.Model(&DriverDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("driver", aggregate.ID().String())
	}

	return nil
}

// Get retrieves a driver by ID.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dto DriverDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every driver ordered by name.
func (r *GormDriverRepository) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dtos []DriverDTO
	if err := db.Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// GetByStatus retrieves the drivers currently in status, ordered by name.
func (r *GormDriverRepository) GetByStatus(ctx context.Context, status driver.Status) ([]*driver.Driver, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dtos []DriverDTO
	if err := db.Where("status = ?", status.String()).Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// Delete hard-deletes a driver. Ledger rows are kept.
func (r *GormDriverRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	result := db.Delete(&DriverDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("driver", id.String())
	}

	return nil
}

func toDomainList(dtos []DriverDTO) ([]*driver.Driver, error) {
	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, nil
}
