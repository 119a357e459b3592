package commands_test

import (
	"testing"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/stretchr/testify/require"
)

var (
	centroid   = kernel.MustLocation(-23.5505, -46.6333)
	laundromat = kernel.MustLocation(-23.5614, -46.6559)
	customer   = kernel.MustLocation(-23.5870, -46.6820)
)

func offlineDriver(t *testing.T, clock *testClock) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), driver.Profile{Name: "Ana Lima", Phone: "+55 11 99999-0000"}, clock.Now())
	require.NoError(t, err)
	return d
}

func availableDriver(t *testing.T, clock *testClock) *driver.Driver {
	t.Helper()
	d := offlineDriver(t, clock)
	require.True(t, d.StartShift(clock.Now()))
	return d
}

func busyDriver(t *testing.T, clock *testClock) *driver.Driver {
	t.Helper()
	d := availableDriver(t, clock)
	require.NoError(t, d.Occupy(clock.Now()))
	return d
}

func readyOrder(t *testing.T, driverID *kernel.UUID) *order.Order {
	t.Helper()
	o, err := order.Restore(kernel.NewUUID(), "7 Dry Ln", kernel.MoneyFromFloat(1000), "wash-fold", "ready", driverID)
	require.NoError(t, err)
	return o
}

func liveTracking(t *testing.T, orderID, driverID kernel.UUID, clock *testClock) *tracking.DeliveryTracking {
	t.Helper()
	pickup, err := kernel.NewPlace("Laundromat", laundromat)
	require.NoError(t, err)
	delivery, err := kernel.NewPlace("Customer", customer)
	require.NoError(t, err)
	tr, err := tracking.New(kernel.NewUUID(), orderID, driverID, pickup, delivery, clock.Now())
	require.NoError(t, err)
	return tr
}

func advanceTo(t *testing.T, tr *tracking.DeliveryTracking, target tracking.Status, clock *testClock) {
	t.Helper()
	for tr.Status() != target {
		next, ok := tr.Status().Next()
		require.True(t, ok)
		_, err := tr.Advance(next, nil, clock.Now())
		require.NoError(t, err)
	}
}
