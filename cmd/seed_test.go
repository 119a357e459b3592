package cmd_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_Seed(t *testing.T) {
	// Given a fixture store and no external services
	t.Setenv("STORE", cmd.StoreFixture)
	t.Setenv("FIXTURE_DSN", "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	cfg, err := cmd.LoadConfig("")
	require.NoError(t, err)

	db, err := cmd.OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))

	var logs bytes.Buffer
	cfg.Log.Level = "error"
	logger, _ := cmd.NewLogger(cfg)
	root, err := cmd.NewCompositionRoot(cfg, db, logger)
	require.NoError(t, err)
	defer root.Close()

	// When
	err = cmd.NewSeeder(root, &logs).Seed(context.Background(), cmd.SeedOptions{Drivers: 3, Online: 2, Orders: 4, Seed: 7})

	// Then
	require.NoError(t, err)
	ctx := kernel.WithPrincipal(context.Background(), kernel.SystemPrincipal())
	drivers := root.CreateGetDriversQueryHandler()

	all, err := drivers.HandleAll(ctx, queries.NewGetAllDriversQuery())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	available, err := drivers.HandleAvailable(ctx, queries.NewGetAvailableDriversQuery())
	require.NoError(t, err)
	assert.Len(t, available, 2)

	var orders int64
	require.NoError(t, db.Table("orders").Count(&orders).Error)
	assert.EqualValues(t, 4, orders)
	assert.Contains(t, logs.String(), "seeded 3 drivers (2 online) and 4 orders")
}
