package orderrepo_test

import (
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGateway(t *testing.T) *orderrepo.GormOrderGateway {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&orderrepo.OrderDTO{}))
	require.NoError(t, db.AutoMigrate(&orderrepo.OrderDTO{}))
	return orderrepo.NewGormOrderGateway(db, time.Second)
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.Restore(kernel.NewUUID(), "7 Dry Ln", kernel.MoneyFromFloat(24.90), "wash-fold", "ready", nil)
	require.NoError(t, err)
	return o
}

func TestGormOrderGateway_Get(t *testing.T) {
	t.Run("returns stored order", func(t *testing.T) {
		// Given
		gw := newGateway(t)
		o := newOrder(t)
		require.NoError(t, gw.Add(t.Context(), o))

		// When
		got, err := gw.Get(t.Context(), o.ID())

		// Then
		require.NoError(t, err)
		assert.Equal(t, "7 Dry Ln", got.Address())
		assert.Equal(t, "24.90", got.Total().String())
		assert.Equal(t, "ready", got.Status())
		assert.Nil(t, got.DriverID())
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		_, err := newGateway(t).Get(t.Context(), kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestGormOrderGateway_LinkDriver(t *testing.T) {
	t.Run("links once and is idempotent for the same driver", func(t *testing.T) {
		// Given
		gw := newGateway(t)
		o := newOrder(t)
		require.NoError(t, gw.Add(t.Context(), o))
		driverID := kernel.NewUUID()

		// When
		require.NoError(t, gw.LinkDriver(t.Context(), o.ID(), driverID))
		require.NoError(t, gw.LinkDriver(t.Context(), o.ID(), driverID))

		// Then
		got, err := gw.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.True(t, got.IsLinkedTo(driverID))
	})

	t.Run("another driver is a state conflict", func(t *testing.T) {
		// Given
		gw := newGateway(t)
		o := newOrder(t)
		require.NoError(t, gw.Add(t.Context(), o))
		require.NoError(t, gw.LinkDriver(t.Context(), o.ID(), kernel.NewUUID()))

		// When
		err := gw.LinkDriver(t.Context(), o.ID(), kernel.NewUUID())

		// Then
		require.ErrorIs(t, err, errs.ErrStateConflict)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		err := newGateway(t).LinkDriver(t.Context(), kernel.NewUUID(), kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
