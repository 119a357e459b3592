package trackingrepo_test

import (
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/trackingrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TrackingRepositoryTestSuite struct {
	suite.Suite
	repo *trackingrepo.GormTrackingRepository
	now  time.Time
}

func TestTrackingRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TrackingRepositoryTestSuite))
}

func (s *TrackingRepositoryTestSuite) SetupTest() {
	dsn := "file:" + strings.ReplaceAll(s.T().Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(db.Migrator().DropTable(&trackingrepo.TrackingDTO{}))
	s.Require().NoError(db.AutoMigrate(&trackingrepo.TrackingDTO{}))

	s.repo = trackingrepo.NewGormTrackingRepository(db, time.Second)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *TrackingRepositoryTestSuite) newTracking(orderID, driverID kernel.UUID, at time.Time) *tracking.DeliveryTracking {
	pickup, err := kernel.NewPlace("12 Wash St", kernel.MustLocation(51.5000, -0.1200))
	s.Require().NoError(err)
	delivery, err := kernel.NewPlace("7 Dry Ln", kernel.MustLocation(51.5200, -0.1000))
	s.Require().NoError(err)

	tr, err := tracking.New(kernel.NewUUID(), orderID, driverID, pickup, delivery, at)
	s.Require().NoError(err)
	return tr
}

func (s *TrackingRepositoryTestSuite) TestAddAndGet_RoundTrip() {
	ctx := s.T().Context()
	tr := s.newTracking(kernel.NewUUID(), kernel.NewUUID(), s.now)
	loc := kernel.MustLocation(51.51, -0.11)
	_, err := tr.Advance(tracking.PickupStarted, &loc, s.now.Add(time.Minute))
	s.Require().NoError(err)
	tr.ApplyETA(1.2, 2, s.now.Add(time.Minute))

	s.Require().NoError(s.repo.Add(ctx, tr))

	got, err := s.repo.Get(ctx, tr.ID())
	s.Require().NoError(err)
	s.Equal(tracking.PickupStarted, got.Status())
	s.Equal("12 Wash St", got.Pickup().Address())
	s.Require().NotNil(got.CurrentLocation())
	s.True(got.CurrentLocation().IsEqual(loc))
	s.Require().NotNil(got.ETA())
	s.Equal(2, got.ETA().Minutes)
	s.Require().NotNil(got.EstimatedPickupTime())
	s.True(got.EstimatedPickupTime().Equal(s.now.Add(3 * time.Minute)))
	s.Nil(got.ActualPickupTime())
}

func (s *TrackingRepositoryTestSuite) TestGet_UnknownID_ReturnsNotFound() {
	_, err := s.repo.Get(s.T().Context(), kernel.NewUUID())

	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *TrackingRepositoryTestSuite) TestLiveLookups() {
	ctx := s.T().Context()
	orderID, driverID := kernel.NewUUID(), kernel.NewUUID()
	done := s.newTracking(orderID, driverID, s.now)
	for _, st := range []tracking.Status{
		tracking.PickupStarted, tracking.PickedUp, tracking.DeliveryStarted, tracking.Delivered,
	} {
		_, err := done.Advance(st, nil, s.now.Add(10*time.Minute))
		s.Require().NoError(err)
	}
	s.Require().NoError(s.repo.Add(ctx, done))

	_, err := s.repo.GetLiveByOrder(ctx, orderID)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = s.repo.GetLiveByDriver(ctx, driverID)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)

	live := s.newTracking(orderID, driverID, s.now.Add(time.Hour))
	s.Require().NoError(s.repo.Add(ctx, live))

	byOrder, err := s.repo.GetLiveByOrder(ctx, orderID)
	s.Require().NoError(err)
	s.True(byOrder.ID().IsEqual(live.ID()))

	byDriver, err := s.repo.GetLiveByDriver(ctx, driverID)
	s.Require().NoError(err)
	s.True(byDriver.ID().IsEqual(live.ID()))

	latest, err := s.repo.GetLatestByOrder(ctx, orderID)
	s.Require().NoError(err)
	s.True(latest.ID().IsEqual(live.ID()))

	count, err := s.repo.CountByOrder(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *TrackingRepositoryTestSuite) TestAdd_SecondLiveRecordForOrder_ReturnsStateConflict() {
	ctx := s.T().Context()
	orderID := kernel.NewUUID()
	s.Require().NoError(s.repo.Add(ctx, s.newTracking(orderID, kernel.NewUUID(), s.now)))

	err := s.repo.Add(ctx, s.newTracking(orderID, kernel.NewUUID(), s.now))

	s.Require().ErrorIs(err, errs.ErrStateConflict)
}

func (s *TrackingRepositoryTestSuite) TestUpdate() {
	ctx := s.T().Context()
	tr := s.newTracking(kernel.NewUUID(), kernel.NewUUID(), s.now)
	s.Require().NoError(s.repo.Add(ctx, tr))

	_, err := tr.Advance(tracking.PickupStarted, nil, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Update(ctx, tr))

	got, err := s.repo.Get(ctx, tr.ID())
	s.Require().NoError(err)
	s.Equal(tracking.PickupStarted, got.Status())

	missing := s.newTracking(kernel.NewUUID(), kernel.NewUUID(), s.now)
	s.Require().ErrorIs(s.repo.Update(ctx, missing), errs.ErrObjectNotFound)
}
