package commands_test

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/earnings"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/shift"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetByStatus(ctx context.Context, status driver.Status) ([]*driver.Driver, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockTrackingRepository struct{ mock.Mock }

func (m *MockTrackingRepository) Add(ctx context.Context, t *tracking.DeliveryTracking) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrackingRepository) Update(ctx context.Context, t *tracking.DeliveryTracking) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrackingRepository) Get(ctx context.Context, id kernel.UUID) (*tracking.DeliveryTracking, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockTrackingRepository) GetLiveByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	return m.result(m.Called(ctx, orderID))
}

func (m *MockTrackingRepository) GetLiveByDriver(
	ctx context.Context,
	driverID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	return m.result(m.Called(ctx, driverID))
}

func (m *MockTrackingRepository) GetLatestByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*tracking.DeliveryTracking, error) {
	return m.result(m.Called(ctx, orderID))
}

func (m *MockTrackingRepository) CountByOrder(ctx context.Context, orderID kernel.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrackingRepository) result(args mock.Arguments) (*tracking.DeliveryTracking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.DeliveryTracking), args.Error(1)
}

type MockEarningsRepository struct{ mock.Mock }

func (m *MockEarningsRepository) Append(ctx context.Context, r *earnings.Record) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockEarningsRepository) ExistsForTracking(ctx context.Context, trackingID kernel.UUID) (bool, error) {
	args := m.Called(ctx, trackingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEarningsRepository) ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*earnings.Record, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*earnings.Record), args.Error(1)
}

type MockShiftRepository struct{ mock.Mock }

func (m *MockShiftRepository) Append(ctx context.Context, s *shift.Shift) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockShiftRepository) ListByDriver(ctx context.Context, driverID kernel.UUID) ([]*shift.Shift, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shift.Shift), args.Error(1)
}

// MockUoW serves both the driver-only and the cross-aggregate unit of work.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	return m.Called().Get(0).(ports.DriverRepository)
}

func (m *MockUoW) TrackingRepository() ports.TrackingRepository {
	return m.Called().Get(0).(ports.TrackingRepository)
}

func (m *MockUoW) EarningsRepository() ports.EarningsRepository {
	return m.Called().Get(0).(ports.EarningsRepository)
}

func (m *MockUoW) ShiftRepository() ports.ShiftRepository {
	return m.Called().Get(0).(ports.ShiftRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	return m.Called().Get(0).(commands.DriverUoW)
}

type MockOrderGateway struct{ mock.Mock }

func (m *MockOrderGateway) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderGateway) LinkDriver(ctx context.Context, orderID, driverID kernel.UUID) error {
	return m.Called(ctx, orderID, driverID).Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Location), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, orderID kernel.UUID, message string) error {
	return m.Called(ctx, orderID, message).Error(0)
}

type MockScheduler struct{ mock.Mock }

func (m *MockScheduler) ScheduleEarnings(ctx context.Context, task ports.EarningsTask) error {
	return m.Called(ctx, task).Error(0)
}

type MockAuthorizer struct{ mock.Mock }

func (m *MockAuthorizer) Authorize(ctx context.Context, p kernel.Principal, perm ports.Permission) error {
	return m.Called(ctx, p, perm).Error(0)
}

// memoryThrottle admits a key once per interval of the test clock.
type memoryThrottle struct {
	clock *testClock
	until map[string]time.Time
}

func newMemoryThrottle(clock *testClock) *memoryThrottle {
	return &memoryThrottle{clock: clock, until: map[string]time.Time{}}
}

func (t *memoryThrottle) Allow(_ context.Context, key string, interval time.Duration) (bool, error) {
	now := t.clock.Now()
	if until, ok := t.until[key]; ok && now.Before(until) {
		return false, nil
	}
	t.until[key] = now.Add(interval)
	return true, nil
}

// recordingPublisher keeps every published snapshot.
type recordingPublisher struct {
	mu       sync.Mutex
	tracking []tracking.Snapshot
	drivers  []driver.Snapshot
}

func (p *recordingPublisher) PublishTracking(_ context.Context, s tracking.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracking = append(p.tracking, s)
	return nil
}

func (p *recordingPublisher) PublishDriver(_ context.Context, s driver.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drivers = append(p.drivers, s)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func systemCtx(ctx context.Context) context.Context {
	return kernel.WithPrincipal(ctx, kernel.SystemPrincipal())
}
