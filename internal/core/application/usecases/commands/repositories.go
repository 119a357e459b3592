// Package commands contains business operations that modify system state.
// Every command is built through its constructor, authorized against the
// principal on the context, and applied inside a unit of work.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrow what each handler may touch.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// DriverRepoFactory provides the driver repository within a transaction.
	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// TrackingRepoFactory provides the tracking repository within a transaction.
	TrackingRepoFactory interface {
		TrackingRepository() ports.TrackingRepository
	}

	// LedgerRepoFactory provides the append-only ledgers within a transaction.
	LedgerRepoFactory interface {
		EarningsRepository() ports.EarningsRepository
		ShiftRepository() ports.ShiftRepository
	}

	// DriverUoW manages transactions for driver-only operations.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	// DriverUoWFactory creates new driver unit of work instances.
	DriverUoWFactory interface {
		Create() DriverUoW
	}

	// UoW manages transactions that span drivers, tracking records and ledgers.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   trackingRepo := uow.TrackingRepository()
	//   driverRepo := uow.DriverRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DriverRepoFactory
		TrackingRepoFactory
		LedgerRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

type storeUoWFactory struct{ store ports.UnitOfWorkFactory }

func (f storeUoWFactory) Create() UoW { return f.store.Create() }

type storeDriverUoWFactory struct{ store ports.UnitOfWorkFactory }

func (f storeDriverUoWFactory) Create() DriverUoW { return f.store.Create() }

// NewUoWFactory narrows a store's unit of work factory for cross-aggregate handlers.
func NewUoWFactory(store ports.UnitOfWorkFactory) UoWFactory {
	return storeUoWFactory{store: store}
}

// NewDriverUoWFactory narrows a store's unit of work factory for driver-only handlers.
func NewDriverUoWFactory(store ports.UnitOfWorkFactory) DriverUoWFactory {
	return storeDriverUoWFactory{store: store}
}
