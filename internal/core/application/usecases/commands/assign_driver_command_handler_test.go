package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fastRetry() commands.RetryPolicy {
	return commands.RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func newAssignHandler(
	factory *MockUoWFactory,
	orders *MockOrderGateway,
	publisher *recordingPublisher,
	clock *testClock,
) commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(
		factory,
		orders,
		commands.NewPlaceResolver(nil, centroid, nil),
		access.AllowAll{},
		publisher,
		nil,
		fastRetry(),
		clock,
		nil,
	)
}

func TestAssignDriverCommandHandler_Handle(t *testing.T) {
	t.Run("opens tracking, occupies driver and links order", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := availableDriver(t, clock)
		o := readyOrder(t, nil)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		orders := new(MockOrderGateway)
		publisher := &recordingPublisher{}

		mock.InOrder(
			orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("DriverRepository").Return(driverRepo).Once(),
			uow.On("TrackingRepository").Return(trackingRepo).Once(),
			driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
			trackingRepo.On("GetLatestByOrder", ctx, o.ID()).
				Return(nil, errs.NewObjectNotFoundError("orderID", o.ID())).Once(),
			trackingRepo.On("Add", ctx, mock.AnythingOfType("*tracking.DeliveryTracking")).Return(nil).Once(),
			driverRepo.On("Update", ctx, d).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
			orders.On("LinkDriver", ctx, o.ID(), d.ID()).Return(nil).Once(),
		)

		cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(),
			commands.PlaceRequest{Address: "Laundromat", Location: &laundromat},
			commands.PlaceRequest{Address: "somewhere unknown"})
		require.NoError(t, err)

		// When
		snapshot, err := newAssignHandler(factory, orders, publisher, clock).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, tracking.Assigned, snapshot.Status)
		assert.True(t, snapshot.DriverID.IsEqual(d.ID()))
		assert.InDelta(t, laundromat.Lat(), snapshot.Pickup.Lat, 1e-9)
		assert.InDelta(t, centroid.Lat(), snapshot.Delivery.Lat, 1e-9, "address without geocoder falls back to centroid")
		assert.Equal(t, "busy", d.Status().String())
		assert.Equal(t, 1, d.AssignedDeliveries())
		assert.Len(t, publisher.tracking, 1)
		assert.Len(t, publisher.drivers, 1)
		mock.AssertExpectationsForObjects(t, driverRepo, trackingRepo, uow, factory, orders)
	})

	t.Run("busy driver is rejected and nothing is written", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := busyDriver(t, clock)
		o := readyOrder(t, nil)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		orders := new(MockOrderGateway)

		orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("DriverRepository").Return(driverRepo).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
		trackingRepo.On("GetLatestByOrder", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderID", o.ID())).Once()

		cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(),
			commands.PlaceRequest{Location: &laundromat}, commands.PlaceRequest{Location: &customer})
		require.NoError(t, err)

		// When
		_, err = newAssignHandler(factory, orders, &recordingPublisher{}, clock).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrStateConflict)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
		trackingRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		orders.AssertNotCalled(t, "LinkDriver", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order link failure after commit is a partial failure", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := availableDriver(t, clock)
		o := readyOrder(t, nil)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		orders := new(MockOrderGateway)

		orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("DriverRepository").Return(driverRepo).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
		driverRepo.On("Update", ctx, d).Return(nil).Once()
		trackingRepo.On("GetLatestByOrder", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("orderID", o.ID())).Once()
		trackingRepo.On("Add", ctx, mock.Anything).Return(nil).Once()
		orders.On("LinkDriver", ctx, o.ID(), d.ID()).Return(errors.New("orders unavailable")).Times(3)

		cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(),
			commands.PlaceRequest{Location: &laundromat}, commands.PlaceRequest{Location: &customer})
		require.NoError(t, err)

		// When
		snapshot, err := newAssignHandler(factory, orders, &recordingPublisher{}, clock).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrPartialFailure)
		var partial *errs.PartialFailureError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, []string{"tracking", "driver"}, partial.Completed)
		assert.Equal(t, "order link", partial.Failed)
		assert.False(t, snapshot.ID.IsZero(), "committed tracking is still returned")
		orders.AssertExpectations(t)
	})

	t.Run("re-drive writes only what is missing", func(t *testing.T) {
		// Given a committed dispatch whose order link failed
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := busyDriver(t, clock)
		o := readyOrder(t, nil)
		live := liveTracking(t, o.ID(), d.ID(), clock)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		orders := new(MockOrderGateway)

		orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("DriverRepository").Return(driverRepo).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
		trackingRepo.On("GetLatestByOrder", ctx, o.ID()).Return(live, nil).Once()
		orders.On("LinkDriver", ctx, o.ID(), d.ID()).Return(nil).Once()

		cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(),
			commands.PlaceRequest{Location: &laundromat}, commands.PlaceRequest{Location: &customer})
		require.NoError(t, err)

		// When
		snapshot, err := newAssignHandler(factory, orders, &recordingPublisher{}, clock).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.True(t, snapshot.ID.IsEqual(live.ID()))
		trackingRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		driverRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		orders.AssertExpectations(t)
	})

	t.Run("same order with another driver conflicts", func(t *testing.T) {
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		first := kernel.NewUUID()
		d := availableDriver(t, clock)
		o := readyOrder(t, &first)

		orders := new(MockOrderGateway)
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once()
		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("DriverRepository").Return(driverRepo).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
		trackingRepo.On("GetLatestByOrder", ctx, o.ID()).Return(liveTracking(t, o.ID(), first, clock), nil).Once()

		cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(),
			commands.PlaceRequest{Location: &laundromat}, commands.PlaceRequest{Location: &customer})
		require.NoError(t, err)

		_, err = newAssignHandler(factory, orders, &recordingPublisher{}, clock).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, "available", d.Status().String())
	})

	t.Run("caller without principal is denied", func(t *testing.T) {
		factory := new(MockUoWFactory)
		orders := new(MockOrderGateway)
		cmd, err := commands.NewAssignDriverCommand(kernel.NewUUID(), kernel.NewUUID(),
			commands.PlaceRequest{Location: &laundromat}, commands.PlaceRequest{Location: &customer})
		require.NoError(t, err)

		_, err = newAssignHandler(factory, orders, &recordingPublisher{}, newTestClock()).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPermissionDenied)
		factory.AssertNotCalled(t, "Create")
		orders.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unconstructed command", func(t *testing.T) {
		factory := new(MockUoWFactory)
		_, err := newAssignHandler(factory, new(MockOrderGateway), &recordingPublisher{}, newTestClock()).
			Handle(systemCtx(t.Context()), commands.AssignDriverCommand{})

		require.ErrorIs(t, err, commands.ErrAssignDriverCommandIsNotConstructed)
	})
}
