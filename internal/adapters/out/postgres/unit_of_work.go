// Package postgres provides the GORM-based Unit of Work used by every command
// handler. A unit of work spans the driver, tracking, earnings and shift tables;
// orders are reached through a separate gateway and are never part of it.
//
// Usage:
//
//	factory := postgres.NewGormUnitOfWorkFactory(db, cfg.StoreTimeout)
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.TrackingRepository().Add(ctx, tr); err != nil {
//	    return err
//	}
//	if err := uow.DriverRepository().Update(ctx, d); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Each UnitOfWork instance holds at most one transaction and must not be
// shared between goroutines.
package postgres

import (
	"context"
	"time"

	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/ledgerrepo"
	"dispatch/internal/adapters/out/postgres/trackingrepo"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances on a shared connection pool.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormUnitOfWorkFactory creates a factory. storeTimeout bounds every repository
// call made through the units it creates; zero disables the bound.
func NewGormUnitOfWorkFactory(db *gorm.DB, storeTimeout time.Duration) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, timeout: storeTimeout}
}

// Create produces a new UnitOfWork with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:      f.db,
		timeout: f.timeout,
	}
}

// GormUnitOfWork coordinates one database transaction across the repositories.
// Repositories obtained before Begin, or after Commit and Rollback, run directly
// on the pool.
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	timeout time.Duration
}

// Begin opens the transaction. Calling Begin again while it is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit makes the transaction durable and closes it.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. After a successful Commit it returns
// gorm.ErrInvalidTransaction, which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// DriverRepository returns the driver repository bound to the current transaction.
func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.conn(), uow.timeout)
}

// TrackingRepository returns the tracking repository bound to the current transaction.
func (uow *GormUnitOfWork) TrackingRepository() ports.TrackingRepository {
	return trackingrepo.NewGormTrackingRepository(uow.conn(), uow.timeout)
}

// EarningsRepository returns the earnings ledger bound to the current transaction.
func (uow *GormUnitOfWork) EarningsRepository() ports.EarningsRepository {
	return ledgerrepo.NewGormEarningsRepository(uow.conn(), uow.timeout)
}

// ShiftRepository returns the shift ledger bound to the current transaction.
func (uow *GormUnitOfWork) ShiftRepository() ports.ShiftRepository {
	return ledgerrepo.NewGormShiftRepository(uow.conn(), uow.timeout)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
