package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type inlineScheduler struct {
	handler commands.UpdateDriverEarningsCommandHandler
	orders  ports.OrderGateway
}

func (s inlineScheduler) ScheduleEarnings(ctx context.Context, task ports.EarningsTask) error {
	o, err := s.orders.Get(ctx, task.OrderID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateDriverEarningsCommand(task.DriverID, o.Total(), task.DeliveryMinutes, &task.TrackingID)
	if err != nil {
		return err
	}
	_, err = s.handler.Handle(kernel.WithPrincipal(ctx, kernel.SystemPrincipal()), cmd)
	return err
}

// DeliveryLifecycleSuite runs the command handlers against a real store.
type DeliveryLifecycleSuite struct {
	suite.Suite

	ctx     context.Context
	clock   *testClock
	store   ports.UnitOfWorkFactory
	orders  *orderrepo.GormOrderGateway
	publish *recordingPublisher

	createDriver commands.CreateDriverCommandHandler
	startShift   commands.StartDriverShiftCommandHandler
	endShift     commands.EndDriverShiftCommandHandler
	assign       commands.AssignDriverCommandHandler
	advance      commands.UpdateDeliveryStatusCommandHandler
	earnings     commands.UpdateDriverEarningsCommandHandler
}

func TestDeliveryLifecycleSuite(t *testing.T) {
	suite.Run(t, new(DeliveryLifecycleSuite))
}

func (s *DeliveryLifecycleSuite) SetupTest() {
	dsn := "file:" + strings.ReplaceAll(s.T().Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(db.Migrator().DropTable(postgres.Models()...))
	s.Require().NoError(postgres.Migrate(db))

	s.ctx = systemCtx(context.Background())
	s.clock = newTestClock()
	s.store = postgres.NewGormUnitOfWorkFactory(db, time.Second)
	s.orders = orderrepo.NewGormOrderGateway(db, time.Second)
	s.publish = &recordingPublisher{}

	full := commands.NewUoWFactory(s.store)
	drivers := commands.NewDriverUoWFactory(s.store)
	allow := access.AllowAll{}

	s.createDriver = commands.NewCreateDriverCommandHandler(drivers, allow, s.clock)
	s.startShift = commands.NewStartDriverShiftCommandHandler(drivers, allow, s.publish, s.clock, nil)
	s.endShift = commands.NewEndDriverShiftCommandHandler(full, allow, s.publish, s.clock, nil)
	s.assign = commands.NewAssignDriverCommandHandler(full, s.orders, commands.NewPlaceResolver(nil, centroid, nil),
		allow, s.publish, nil, fastRetry(), s.clock, nil)
	s.earnings = commands.NewUpdateDriverEarningsCommandHandler(full, services.DefaultCommissionPolicy(),
		allow, s.publish, nil, s.clock, nil)
	s.advance = commands.NewUpdateDeliveryStatusCommandHandler(full, inlineScheduler{handler: s.earnings, orders: s.orders},
		allow, s.publish, nil, s.clock, nil)
}

func (s *DeliveryLifecycleSuite) newDriver() kernel.UUID {
	cmd, err := commands.NewCreateDriverCommand(driver.Profile{Name: "Ana Lima", Phone: "+55 11 99999-0000"})
	s.Require().NoError(err)
	snapshot, err := s.createDriver.Handle(s.ctx, cmd)
	s.Require().NoError(err)
	return snapshot.ID
}

func (s *DeliveryLifecycleSuite) newOrder() kernel.UUID {
	o := readyOrder(s.T(), nil)
	s.Require().NoError(s.orders.Add(s.ctx, o))
	return o.ID()
}

func (s *DeliveryLifecycleSuite) driver(id kernel.UUID) *driver.Driver {
	d, err := s.store.Create().DriverRepository().Get(s.ctx, id)
	s.Require().NoError(err)
	return d
}

func (s *DeliveryLifecycleSuite) dispatch(orderID, driverID kernel.UUID) (tracking.Snapshot, error) {
	cmd, err := commands.NewAssignDriverCommand(orderID, driverID,
		commands.PlaceRequest{Address: "Laundromat", Location: &laundromat},
		commands.PlaceRequest{Address: "Customer", Location: &customer})
	s.Require().NoError(err)
	return s.assign.Handle(s.ctx, cmd)
}

func (s *DeliveryLifecycleSuite) moveTo(trackingID kernel.UUID, status tracking.Status) tracking.Snapshot {
	cmd, err := commands.NewUpdateDeliveryStatusCommand(trackingID, status.String(), nil)
	s.Require().NoError(err)
	snapshot, err := s.advance.Handle(s.ctx, cmd)
	s.Require().NoError(err)
	return snapshot
}

func (s *DeliveryLifecycleSuite) TestShiftToDeliveryToShiftEnd() {
	// Given an offline driver and a ready order
	driverID := s.newDriver()
	orderID := s.newOrder()
	s.Equal(driver.Offline, s.driver(driverID).Status())

	// When the shift starts
	startCmd, err := commands.NewStartDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.startShift.Handle(s.ctx, startCmd)
	s.Require().NoError(err)

	// Then the driver is available and online
	d := s.driver(driverID)
	s.Equal(driver.Available, d.Status())
	s.True(d.IsOnline())

	// When the driver is dispatched
	s.clock.Advance(10 * time.Minute)
	assigned, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)

	// Then the driver is busy, one tracking record exists and the order is linked
	s.Equal(driver.Busy, s.driver(driverID).Status())
	count, err := s.store.Create().TrackingRepository().CountByOrder(s.ctx, orderID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
	o, err := s.orders.Get(s.ctx, orderID)
	s.Require().NoError(err)
	s.True(o.IsLinkedTo(driverID))

	// When the delivery runs through every status
	var statuses []tracking.Status
	for _, status := range []tracking.Status{
		tracking.PickupStarted, tracking.PickedUp, tracking.DeliveryStarted,
	} {
		s.clock.Advance(10 * time.Minute)
		statuses = append(statuses, s.moveTo(assigned.ID, status).Status)
	}
	s.clock.Advance(10 * time.Minute)
	delivered := s.moveTo(assigned.ID, tracking.Delivered)
	statuses = append(statuses, delivered.Status)

	// Then status never went backwards, the driver is free and the delivery is credited
	for i := 1; i < len(statuses); i++ {
		s.True(statuses[i-1].IsBefore(statuses[i]))
	}
	s.NotNil(delivered.ActualDeliveryTime)
	s.NotNil(delivered.ActualPickupTime)
	d = s.driver(driverID)
	s.Equal(driver.Available, d.Status())
	s.Equal("150.00", d.TotalEarnings().String())
	s.Equal(1, d.TotalDeliveries())
	s.InDelta(40.0, d.AverageDeliveryTime(), 1e-6)
	s.Equal("150.00", d.Shift().Earnings.String())

	// When the shift ends
	s.clock.Advance(time.Hour)
	endCmd, err := commands.NewEndDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.endShift.Handle(s.ctx, endCmd)
	s.Require().NoError(err)

	// Then the driver is offline and the shift is in the ledger
	d = s.driver(driverID)
	s.Equal(driver.Offline, d.Status())
	s.False(d.IsOnline())
	shifts, err := s.store.Create().ShiftRepository().ListByDriver(s.ctx, driverID)
	s.Require().NoError(err)
	s.Require().Len(shifts, 1)
	s.Greater(shifts[0].TotalHours(), 0.0)
	s.InDelta(110.0/60, shifts[0].TotalHours(), 1e-6)
	s.Equal("150.00", shifts[0].Earnings().String())
}

func (s *DeliveryLifecycleSuite) TestRepeatedDispatchKeepsOneTrackingRecord() {
	driverID := s.newDriver()
	orderID := s.newOrder()
	startCmd, err := commands.NewStartDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.startShift.Handle(s.ctx, startCmd)
	s.Require().NoError(err)

	first, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)
	second, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)

	s.True(first.ID.IsEqual(second.ID))
	count, err := s.store.Create().TrackingRepository().CountByOrder(s.ctx, orderID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
	s.Equal(1, s.driver(driverID).AssignedDeliveries())
}

func (s *DeliveryLifecycleSuite) TestRepeatedDeliveredCreditsOnce() {
	driverID := s.newDriver()
	orderID := s.newOrder()
	startCmd, err := commands.NewStartDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.startShift.Handle(s.ctx, startCmd)
	s.Require().NoError(err)
	assigned, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)

	for _, status := range []tracking.Status{
		tracking.PickupStarted, tracking.PickedUp, tracking.DeliveryStarted, tracking.Delivered, tracking.Delivered,
	} {
		s.moveTo(assigned.ID, status)
	}

	d := s.driver(driverID)
	s.Equal(1, d.TotalDeliveries())
	s.Equal("150.00", d.TotalEarnings().String())
}

func (s *DeliveryLifecycleSuite) TestDeliveredOrderCannotBeDispatchedAgain() {
	driverID := s.newDriver()
	orderID := s.newOrder()
	startCmd, err := commands.NewStartDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.startShift.Handle(s.ctx, startCmd)
	s.Require().NoError(err)
	assigned, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)
	for _, status := range []tracking.Status{
		tracking.PickupStarted, tracking.PickedUp, tracking.DeliveryStarted, tracking.Delivered,
	} {
		s.moveTo(assigned.ID, status)
	}

	_, err = s.dispatch(orderID, driverID)

	s.Require().ErrorIs(err, errs.ErrStateConflict)
	count, err := s.store.Create().TrackingRepository().CountByOrder(s.ctx, orderID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
	d := s.driver(driverID)
	s.Equal(driver.Available, d.Status())
	s.Equal(1, d.TotalDeliveries())
	s.Equal("150.00", d.TotalEarnings().String())
}

// flakyOrders fails the first lookup of every order.
type flakyOrders struct {
	ports.OrderGateway
	failed map[kernel.UUID]bool
}

func (f *flakyOrders) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if !f.failed[id] {
		f.failed[id] = true
		return nil, errors.New("statement timeout")
	}
	return f.OrderGateway.Get(ctx, id)
}

func (s *DeliveryLifecycleSuite) TestDeliveryIsCreditedWhenOrderLookupFailsOnce() {
	credited := make(chan struct{}, 1)
	orders := &flakyOrders{OrderGateway: s.orders, failed: map[kernel.UUID]bool{}}
	scheduler := schedulerFunc(func(ctx context.Context, task ports.EarningsTask) error {
		err := inlineScheduler{handler: s.earnings, orders: orders}.ScheduleEarnings(ctx, task)
		if err == nil {
			credited <- struct{}{}
		}
		return err
	})
	advance := commands.NewUpdateDeliveryStatusCommandHandler(commands.NewUoWFactory(s.store), scheduler,
		access.AllowAll{}, s.publish, nil, s.clock, nil).WithEarningsRetry(fastRetry())

	driverID := s.newDriver()
	orderID := s.newOrder()
	startCmd, err := commands.NewStartDriverShiftCommand(driverID)
	s.Require().NoError(err)
	_, err = s.startShift.Handle(s.ctx, startCmd)
	s.Require().NoError(err)
	assigned, err := s.dispatch(orderID, driverID)
	s.Require().NoError(err)
	for _, status := range []tracking.Status{tracking.PickupStarted, tracking.PickedUp, tracking.DeliveryStarted} {
		s.moveTo(assigned.ID, status)
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(assigned.ID, tracking.Delivered.String(), nil)
	s.Require().NoError(err)
	delivered, err := advance.Handle(s.ctx, cmd)

	s.Require().NoError(err)
	s.Equal(tracking.Delivered, delivered.Status)
	select {
	case <-credited:
	case <-time.After(5 * time.Second):
		s.Require().FailNow("delivery was never credited")
	}
	d := s.driver(driverID)
	s.Equal(1, d.TotalDeliveries())
	s.Equal("150.00", d.TotalEarnings().String())
}

type schedulerFunc func(ctx context.Context, task ports.EarningsTask) error

func (f schedulerFunc) ScheduleEarnings(ctx context.Context, task ports.EarningsTask) error {
	return f(ctx, task)
}

func TestUpdateDriverEarnings_UniformDeliveryTimeKeepsAverage(t *testing.T) {
	// Given
	ctx := systemCtx(t.Context())
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(postgres.Models()...))
	require.NoError(t, postgres.Migrate(db))
	store := postgres.NewGormUnitOfWorkFactory(db, time.Second)
	clock := newTestClock()

	d := availableDriver(t, clock)
	require.NoError(t, store.Create().DriverRepository().Add(ctx, d))
	handler := commands.NewUpdateDriverEarningsCommandHandler(commands.NewUoWFactory(store), services.DefaultCommissionPolicy(),
		access.AllowAll{}, nil, nil, clock, nil)

	// When the same delivery time is credited repeatedly without tracking ids
	var snapshot driver.Snapshot
	for i := range 3 {
		cmd, cmdErr := commands.NewUpdateDriverEarningsCommand(d.ID(), kernel.MoneyFromFloat(1000), 30, nil)
		require.NoError(t, cmdErr)
		snapshot, err = handler.Handle(ctx, cmd)
		require.NoError(t, err)

		// Then every call adds exactly 15% and one delivery
		assert.Equal(t, kernel.MoneyFromFloat(150*float64(i+1)).String(), snapshot.TotalEarnings.String())
		assert.Equal(t, i+1, snapshot.TotalDeliveries)
		assert.InDelta(t, 30.0, snapshot.AverageDeliveryTime, 1e-9)
	}
	assert.Equal(t, 3, snapshot.Performance.Today.Deliveries)
}
