package driverrepo_test

import (
	"strings"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DriverRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo *driverrepo.GormDriverRepository
	now  time.Time
}

func TestDriverRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(DriverRepositoryTestSuite))
}

func (s *DriverRepositoryTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(s.T().Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.Migrator().DropTable(&driverrepo.DriverDTO{}))
	s.Require().NoError(db.AutoMigrate(&driverrepo.DriverDTO{}))

	s.db = db
	s.repo = driverrepo.NewGormDriverRepository(db, time.Second)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *DriverRepositoryTestSuite) newDriver(name string) *driver.Driver {
	d, err := driver.NewDriver(kernel.NewUUID(), driver.Profile{
		Name:    name,
		Phone:   "+1 555 0100",
		Email:   "driver@example.com",
		Vehicle: driver.Vehicle{Type: "van", Plate: "LND-042"},
	}, s.now)
	s.Require().NoError(err)
	return d
}

func (s *DriverRepositoryTestSuite) TestAddAndGet_RoundTripsEveryGroup() {
	ctx := s.T().Context()
	d := s.newDriver("Ana")
	d.StartShift(s.now)
	s.Require().NoError(d.Rate(4, s.now))
	s.Require().NoError(d.Rate(5, s.now))
	s.Require().NoError(d.Occupy(s.now))
	s.Require().NoError(d.RecordDelivery(kernel.MoneyFromFloat(3.75), 25, s.now))
	pos, err := kernel.NewPosition(kernel.MustLocation(-23.55, -46.63), s.now)
	s.Require().NoError(err)
	d.UpdateLocation(pos, s.now)

	s.Require().NoError(s.repo.Add(ctx, d))

	got, err := s.repo.Get(ctx, d.ID())
	s.Require().NoError(err)
	s.Equal(d.Name(), got.Name())
	s.Equal(driver.Busy, got.Status())
	s.True(got.IsOnline())
	s.InDelta(4.5, got.Rating(), 1e-9)
	s.Equal(2, got.RatingCount())
	s.Equal(1, got.TotalDeliveries())
	s.Equal(1, got.AssignedDeliveries())
	s.Equal("3.75", got.TotalEarnings().String())
	s.Equal("3.75", got.Shift().Earnings.String())
	s.InDelta(25.0, got.AverageDeliveryTime(), 1e-9)
	s.Require().NotNil(got.CurrentLocation())
	s.InDelta(-23.55, got.CurrentLocation().Location().Lat(), 1e-9)
	s.True(got.CurrentLocation().Timestamp().Equal(s.now))
	s.Equal(driver.DefaultPreferences(), got.Preferences())
	s.True(got.Shift().IsOpen())
}

func (s *DriverRepositoryTestSuite) TestGet_UnknownID_ReturnsNotFound() {
	_, err := s.repo.Get(s.T().Context(), kernel.NewUUID())

	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *DriverRepositoryTestSuite) TestUpdate_PersistsChanges() {
	ctx := s.T().Context()
	d := s.newDriver("Bruno")
	s.Require().NoError(s.repo.Add(ctx, d))

	d.StartShift(s.now.Add(time.Minute))
	s.Require().NoError(s.repo.Update(ctx, d))

	got, err := s.repo.Get(ctx, d.ID())
	s.Require().NoError(err)
	s.Equal(driver.Available, got.Status())
	s.True(got.UpdatedAt().Equal(s.now.Add(time.Minute)))
}

func (s *DriverRepositoryTestSuite) TestUpdate_MissingDriver_ReturnsNotFound() {
	err := s.repo.Update(s.T().Context(), s.newDriver("Ghost"))

	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *DriverRepositoryTestSuite) TestGetAllAndGetByStatus() {
	ctx := s.T().Context()
	carla := s.newDriver("Carla")
	ana := s.newDriver("Ana")
	ana.StartShift(s.now)
	s.Require().NoError(s.repo.Add(ctx, carla))
	s.Require().NoError(s.repo.Add(ctx, ana))

	all, err := s.repo.GetAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Ana", all[0].Name())
	s.Equal("Carla", all[1].Name())

	available, err := s.repo.GetByStatus(ctx, driver.Available)
	s.Require().NoError(err)
	s.Require().Len(available, 1)
	s.True(available[0].IsEqual(ana))

	_, err = s.repo.GetByStatus(ctx, driver.Status("sleeping"))
	s.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (s *DriverRepositoryTestSuite) TestDelete() {
	ctx := s.T().Context()
	d := s.newDriver("Dora")
	s.Require().NoError(s.repo.Add(ctx, d))

	s.Require().NoError(s.repo.Delete(ctx, d.ID()))

	_, err := s.repo.Get(ctx, d.ID())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
	s.Require().ErrorIs(s.repo.Delete(ctx, d.ID()), errs.ErrObjectNotFound)
}
