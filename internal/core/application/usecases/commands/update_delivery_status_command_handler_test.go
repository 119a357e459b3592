package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/access"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateDeliveryStatusCommandHandler_Handle(t *testing.T) {
	t.Run("delivered releases the driver and re-drives a failed accounting hand-off", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := busyDriver(t, clock)
		o := readyOrder(t, nil)
		tr := liveTracking(t, o.ID(), d.ID(), clock)
		advanceTo(t, tr, tracking.DeliveryStarted, clock)
		clock.Advance(30 * time.Minute)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		scheduler := new(MockScheduler)
		publisher := &recordingPublisher{}
		scheduled := make(chan struct{})
		isTask := mock.MatchedBy(func(task ports.EarningsTask) bool {
			return task.TrackingID.IsEqual(tr.ID()) &&
				task.OrderID.IsEqual(o.ID()) &&
				task.DriverID.IsEqual(d.ID()) &&
				task.DeliveryMinutes == 30
		})

		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("TrackingRepository").Return(trackingRepo).Once(),
			trackingRepo.On("Get", ctx, tr.ID()).Return(tr, nil).Once(),
			trackingRepo.On("Update", ctx, tr).Return(nil).Once(),
			uow.On("DriverRepository").Return(driverRepo).Once(),
			driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once(),
			uow.On("TrackingRepository").Return(trackingRepo).Once(),
			trackingRepo.On("GetLiveByDriver", ctx, d.ID()).
				Return(nil, errs.NewObjectNotFoundError("driverID", d.ID())).Once(),
			driverRepo.On("Update", ctx, d).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
			scheduler.On("ScheduleEarnings", ctx, isTask).Return(errors.New("queue unavailable")).Once(),
			scheduler.On("ScheduleEarnings", mock.Anything, isTask).Return(nil).Once().
				Run(func(mock.Arguments) { close(scheduled) }),
		)

		cmd, err := commands.NewUpdateDeliveryStatusCommand(tr.ID(), "delivered", &customer)
		require.NoError(t, err)

		handler := commands.NewUpdateDeliveryStatusCommandHandler(
			factory, scheduler, access.AllowAll{}, publisher, nil, clock, nil).WithEarningsRetry(fastRetry())

		// When
		snapshot, err := handler.Handle(ctx, cmd)
		select {
		case <-scheduled:
		case <-time.After(5 * time.Second):
			t.Fatal("accounting hand-off was not retried")
		}

		// Then
		require.NoError(t, err, "accounting failures never fail the transition")
		assert.Equal(t, tracking.Delivered, snapshot.Status)
		require.NotNil(t, snapshot.ActualDeliveryTime)
		assert.Equal(t, "available", d.Status().String())
		assert.Len(t, publisher.tracking, 1)
		assert.Len(t, publisher.drivers, 1)
		mock.AssertExpectationsForObjects(t, driverRepo, trackingRepo, uow, factory, scheduler)
	})

	t.Run("repeating delivered keeps a driver that is already on another delivery", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		d := busyDriver(t, clock)
		o := readyOrder(t, nil)
		tr := liveTracking(t, o.ID(), d.ID(), clock)
		advanceTo(t, tr, tracking.Delivered, clock)
		next := liveTracking(t, kernel.NewUUID(), d.ID(), clock)

		driverRepo := new(MockDriverRepository)
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		scheduler := new(MockScheduler)

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Twice()
		uow.On("DriverRepository").Return(driverRepo).Once()
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		trackingRepo.On("Get", ctx, tr.ID()).Return(tr, nil).Once()
		driverRepo.On("Get", ctx, d.ID()).Return(d, nil).Once()
		trackingRepo.On("GetLiveByDriver", ctx, d.ID()).Return(next, nil).Once()
		scheduler.On("ScheduleEarnings", ctx, mock.Anything).Return(nil).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(tr.ID(), "delivered", nil)
		require.NoError(t, err)

		// When
		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, scheduler, access.AllowAll{}, &recordingPublisher{}, nil, clock, nil).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, "busy", d.Status().String())
		trackingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		driverRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		scheduler.AssertExpectations(t)
	})

	t.Run("backward move is a state conflict", func(t *testing.T) {
		// Given
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		tr := liveTracking(t, kernel.NewUUID(), kernel.NewUUID(), clock)
		advanceTo(t, tr, tracking.PickedUp, clock)

		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		trackingRepo.On("Get", ctx, tr.ID()).Return(tr, nil).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(tr.ID(), "pickup_started", nil)
		require.NoError(t, err)

		// When
		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, new(MockScheduler), access.AllowAll{}, nil, nil, clock, nil).
			Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, tracking.PickedUp, tr.Status())
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("skipping a status is a state conflict", func(t *testing.T) {
		ctx := systemCtx(t.Context())
		clock := newTestClock()
		tr := liveTracking(t, kernel.NewUUID(), kernel.NewUUID(), clock)

		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		trackingRepo.On("Get", ctx, tr.ID()).Return(tr, nil).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(tr.ID(), "delivered", nil)
		require.NoError(t, err)

		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, nil, access.AllowAll{}, nil, nil, clock, nil).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrStateConflict)
	})

	t.Run("another driver may not move the record", func(t *testing.T) {
		// Given
		clock := newTestClock()
		tr := liveTracking(t, kernel.NewUUID(), kernel.NewUUID(), clock)
		intruder := kernel.Principal{Subject: kernel.NewUUID().String(), Role: kernel.RoleDriver}
		ctx := kernel.WithPrincipal(t.Context(), intruder)

		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		authorizer := new(MockAuthorizer)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		trackingRepo.On("Get", ctx, tr.ID()).Return(tr, nil).Once()
		authorizer.On("Authorize", ctx, intruder, ports.Permission{
			Resource: ports.ResourceTracking,
			Action:   ports.ActionUpdate,
			OwnerID:  intruder.Subject,
		}).Return(nil).Once()
		authorizer.On("Authorize", ctx, intruder, ports.Permission{
			Resource: ports.ResourceTracking,
			Action:   ports.ActionUpdate,
			OwnerID:  tr.DriverID().String(),
		}).Return(errs.NewPermissionDeniedError(intruder.Subject, ports.ResourceTracking, ports.ActionUpdate)).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(tr.ID(), "pickup_started", nil)
		require.NoError(t, err)

		// When
		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, nil, authorizer, nil, nil, clock, nil).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
		assert.Equal(t, tracking.Assigned, tr.Status())
		authorizer.AssertExpectations(t)
	})

	t.Run("a role without update rights is denied before the record is loaded", func(t *testing.T) {
		// Given
		customerPrincipal := kernel.Principal{Subject: kernel.NewUUID().String(), Role: kernel.RoleCustomer}
		ctx := kernel.WithPrincipal(t.Context(), customerPrincipal)
		factory := new(MockUoWFactory)
		authorizer := new(MockAuthorizer)
		authorizer.On("Authorize", ctx, customerPrincipal, ports.Permission{
			Resource: ports.ResourceTracking,
			Action:   ports.ActionUpdate,
			OwnerID:  customerPrincipal.Subject,
		}).Return(errs.NewPermissionDeniedError(customerPrincipal.Subject, ports.ResourceTracking, ports.ActionUpdate)).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(kernel.NewUUID(), "pickup_started", nil)
		require.NoError(t, err)

		// When
		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, nil, authorizer, nil, nil, newTestClock(), nil).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
		factory.AssertNotCalled(t, "Create")
		authorizer.AssertExpectations(t)
	})

	t.Run("unknown tracking id", func(t *testing.T) {
		ctx := systemCtx(t.Context())
		id := kernel.NewUUID()
		trackingRepo := new(MockTrackingRepository)
		uow := new(MockUoW)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("TrackingRepository").Return(trackingRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		trackingRepo.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("trackingID", id)).Once()

		cmd, err := commands.NewUpdateDeliveryStatusCommand(id, "pickup_started", nil)
		require.NoError(t, err)

		_, err = commands.NewUpdateDeliveryStatusCommandHandler(
			factory, nil, access.AllowAll{}, nil, nil, newTestClock(), nil).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
