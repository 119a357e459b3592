package ledgerrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dbctx"
	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/shift"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormEarningsRepository implements ports.EarningsRepository using GORM.
type GormEarningsRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormEarningsRepository creates a repository on db.
func NewGormEarningsRepository(db *gorm.DB, timeout time.Duration) *GormEarningsRepository {
	return &GormEarningsRepository{db: db, timeout: timeout}
}

// Append inserts a ledger entry. Crediting the same tracking record twice is a state conflict.
func (r *GormEarningsRepository) Append(ctx context.Context, record *earnings.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := earningsFromDomain(record)
	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictErrorWithCause("earnings", "credited", "credited again", err)
		}
		return err
	}

	return nil
}

// ExistsForTracking reports whether the delivery was already credited.
func (r *GormEarningsRepository) ExistsForTracking(ctx context.Context, trackingID kernel.UUID) (bool, error) {
	if err := trackingID.Validate(); err != nil {
		return false, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var count int64
	if err := db.Model(&EarningsDTO{}).Where("tracking_id = ?", trackingID.Bytes()).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListByDriver returns the driver's whole ledger, newest first.
func (r *GormEarningsRepository) ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*earnings.Record, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dtos []EarningsDTO
	if err := db.Where("driver_id = ?", driverID.Bytes()).Order("recorded_at DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*earnings.Record, 0, len(dtos))
	for _, dto := range dtos {
		rec, err := earningsToDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// GormShiftRepository implements ports.ShiftRepository using GORM.
type GormShiftRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormShiftRepository creates a repository on db.
func NewGormShiftRepository(db *gorm.DB, timeout time.Duration) *GormShiftRepository {
	return &GormShiftRepository{db: db, timeout: timeout}
}

// Append inserts a completed shift.
func (r *GormShiftRepository) Append(ctx context.Context, entry *shift.Shift) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	dto := shiftFromDomain(entry)
	return db.Create(&dto).Error
}

// ListByDriver returns the driver's completed shifts, newest first.
func (r *GormShiftRepository) ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*shift.Shift, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	db, cancel := dbctx.Scope(ctx, r.db, r.timeout)
	defer cancel()

	var dtos []ShiftDTO
	if err := db.Where("driver_id = ?", driverID.Bytes()).Order("start_time DESC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	shifts := make([]*shift.Shift, 0, len(dtos))
	for _, dto := range dtos {
		s, err := shiftToDomain(dto)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	return shifts, nil
}
