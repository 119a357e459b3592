package postgres

import (
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/ledgerrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/trackingrepo"

	"gorm.io/gorm"
)

// Models lists every table owned or read by the service.
func Models() []any {
	return []any{
		&driverrepo.DriverDTO{},
		&trackingrepo.TrackingDTO{},
		&ledgerrepo.EarningsDTO{},
		&ledgerrepo.ShiftDTO{},
		&orderrepo.OrderDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
