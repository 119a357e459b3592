package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/authz"
	"dispatch/internal/adapters/out/events"
	"dispatch/internal/adapters/out/geocoding"
	"dispatch/internal/adapters/out/notifier"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/adapters/out/realtime"
	"dispatch/internal/adapters/out/throttle"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/metrics"
	"dispatch/internal/worker"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CompositionRoot owns the infrastructure and builds the use-case handlers.
// Optional collaborators fall back to in-process implementations when their
// endpoint is not configured: no Redis means a memory throttle and no relay,
// no AMQP means logged notifications, a disabled queue means earnings are
// credited inline.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  kernel.Clock

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	orders     *orderrepo.GormOrderGateway

	redis      *redis.Client
	hub        *realtime.Hub
	relay      *realtime.RedisRelay
	publisher  ports.SnapshotPublisher
	throttle   ports.NotificationThrottle
	geocoder   ports.Geocoder
	notifier   ports.Notifier
	scheduler  ports.EarningsScheduler
	authorizer ports.Authorizer
	registry   *prometheus.Registry
	metrics    *metrics.Prometheus
	calculator services.ETACalculator
	commission services.CommissionPolicy

	closers []io.Closer
}

// OpenDatabase connects to the configured store.
func OpenDatabase(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Store {
	case StoreFixture:
		dialector = sqlite.Open(cfg.FixtureDSN)
	default:
		dialector = gormpostgres.Open(cfg.DB.DSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return db, nil
}

// NewCompositionRoot wires every adapter. Close releases them.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		clock:      kernel.SystemClock{},
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, cfg.StoreTimeout),
		orders:     orderrepo.NewGormOrderGateway(gormDB, cfg.StoreTimeout),
		hub:        realtime.NewHub(),
		registry:   prometheus.NewRegistry(),
	}

	if err := c.wire(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) wire() error {
	var err error

	if c.calculator, err = services.NewETACalculator(c.cfg.Dispatch.MinutesPerKm); err != nil {
		return fmt.Errorf("dispatch.minutes_per_km: %w", err)
	}
	rate, err := decimal.NewFromString(c.cfg.Dispatch.CommissionRate)
	if err != nil {
		return fmt.Errorf("dispatch.commission_rate: %w", err)
	}
	if c.commission, err = services.NewCommissionPolicy(rate); err != nil {
		return fmt.Errorf("dispatch.commission_rate: %w", err)
	}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if c.metrics, err = metrics.NewPrometheus(c.registry); err != nil {
		return err
	}

	authorizer, err := authz.NewCasbinAuthorizer(c.gormDB)
	if err != nil {
		return err
	}
	c.authorizer = authorizer

	publishers := realtime.Fanout{c.hub}

	if c.cfg.Redis.Addr != "" {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
		c.closers = append(c.closers, c.redis)
		c.relay = realtime.NewRedisRelay(c.redis, c.hub, c.logger)
		publishers = append(publishers, c.relay)
		c.throttle = throttle.NewRedisThrottle(c.redis, "")
	} else {
		c.throttle = throttle.NewMemoryThrottle(c.clock)
	}

	if c.cfg.Kafka.Brokers != "" {
		kafka, kafkaErr := events.DialKafka(c.cfg.Kafka.Brokers, events.Topics{
			Tracking: c.cfg.Kafka.TrackingTopic,
			Drivers:  c.cfg.Kafka.DriversTopic,
		})
		if kafkaErr != nil {
			return kafkaErr
		}
		c.closers = append(c.closers, kafka)
		publishers = append(publishers, kafka)
	}
	c.publisher = publishers

	if c.cfg.Geocoder.URL != "" {
		var geocoder ports.Geocoder = geocoding.NewHTTPGeocoder(c.cfg.Geocoder.URL, c.cfg.Geocoder.APIKey, c.cfg.Geocoder.Timeout)
		if c.redis != nil {
			geocoder = geocoding.NewCachedGeocoder(geocoder, c.redis, c.cfg.Geocoder.CacheTTL, c.logger)
		}
		c.geocoder = geocoder
	}

	if c.cfg.AMQP.URL != "" {
		amqpNotifier, amqpErr := notifier.DialAMQP(c.cfg.AMQP.URL, c.cfg.AMQP.Queue)
		if amqpErr != nil {
			return amqpErr
		}
		c.closers = append(c.closers, amqpNotifier)
		c.notifier = amqpNotifier
	} else {
		c.notifier = notifier.NewLogNotifier(c.logger)
	}

	if c.cfg.Queue.Enabled {
		earningsQueue := queue.NewEarningsQueue(c.cfg.QueueConfig())
		c.closers = append(c.closers, earningsQueue)
		c.scheduler = earningsQueue
	} else {
		c.scheduler = worker.NewInlineScheduler(c.CreateEarningsConsumer())
	}

	return nil
}

// Close releases every connection the root opened.
func (c *CompositionRoot) Close() error {
	c.hub.Close()

	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	return errors.Join(errs...)
}

// RunRelay forwards snapshots published by other replicas until ctx ends. It
// returns immediately when Redis is not configured.
func (c *CompositionRoot) RunRelay(ctx context.Context) error {
	if c.relay == nil {
		return nil
	}
	return c.relay.Run(ctx)
}

func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

func (c *CompositionRoot) DB() *gorm.DB {
	return c.gormDB
}

func (c *CompositionRoot) full() commands.UoWFactory {
	return commands.NewUoWFactory(c.uowFactory)
}

func (c *CompositionRoot) drivers() commands.DriverUoWFactory {
	return commands.NewDriverUoWFactory(c.uowFactory)
}

func (c *CompositionRoot) CreateCreateDriverCommandHandler() commands.CreateDriverCommandHandler {
	return commands.NewCreateDriverCommandHandler(c.drivers(), c.authorizer, c.clock)
}

func (c *CompositionRoot) CreateUpdateDriverStatusCommandHandler() commands.UpdateDriverStatusCommandHandler {
	return commands.NewUpdateDriverStatusCommandHandler(c.drivers(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.drivers(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateDeleteDriverCommandHandler() commands.DeleteDriverCommandHandler {
	return commands.NewDeleteDriverCommandHandler(c.drivers(), c.authorizer)
}

func (c *CompositionRoot) CreateUpdateDriverRatingCommandHandler() commands.UpdateDriverRatingCommandHandler {
	return commands.NewUpdateDriverRatingCommandHandler(c.drivers(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateStartDriverShiftCommandHandler() commands.StartDriverShiftCommandHandler {
	return commands.NewStartDriverShiftCommandHandler(c.drivers(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateEndDriverShiftCommandHandler() commands.EndDriverShiftCommandHandler {
	return commands.NewEndDriverShiftCommandHandler(c.full(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	centroid, err := kernel.NewLocation(c.cfg.Dispatch.CentroidLat, c.cfg.Dispatch.CentroidLng)
	if err != nil {
		c.logger.Warn("invalid dispatch centroid, using 0,0", "error", err)
		centroid = kernel.MustLocation(0, 0)
	}
	places := commands.NewPlaceResolver(c.geocoder, centroid, c.logger)

	return commands.NewAssignDriverCommandHandler(c.full(), c.orders, places, c.authorizer, c.publisher,
		c.metrics, commands.DefaultRetryPolicy(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(c.full(), c.scheduler, c.authorizer,
		c.publisher, c.metrics, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRecordLocationPingCommandHandler() commands.RecordLocationPingCommandHandler {
	policy := commands.PingPolicy{
		Debounce:             c.cfg.Dispatch.PingDebounce,
		NotificationInterval: c.cfg.Dispatch.NotificationInterval,
	}
	return commands.NewRecordLocationPingCommandHandler(c.full(), c.calculator, c.notifier, c.throttle,
		c.authorizer, c.publisher, c.metrics, policy, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateDriverEarningsCommandHandler() commands.UpdateDriverEarningsCommandHandler {
	return commands.NewUpdateDriverEarningsCommandHandler(c.full(), c.commission, c.authorizer, c.publisher,
		c.metrics, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRefreshPerformanceCommandHandler() commands.RefreshPerformanceCommandHandler {
	return commands.NewRefreshPerformanceCommandHandler(c.full(), c.authorizer, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetDriversQueryHandler() queries.GetDriversQueryHandler {
	return queries.NewGetDriversQueryHandler(c.uowFactory.Create(), c.authorizer)
}

func (c *CompositionRoot) CreateGetDriverEarningsQueryHandler() queries.GetDriverEarningsQueryHandler {
	return queries.NewGetDriverEarningsQueryHandler(c.uowFactory.Create(), c.authorizer, c.clock)
}

func (c *CompositionRoot) CreateGetDriverShiftsQueryHandler() queries.GetDriverShiftsQueryHandler {
	return queries.NewGetDriverShiftsQueryHandler(c.gormDB, c.authorizer)
}

func (c *CompositionRoot) CreateGetDeliveryTrackingQueryHandler() queries.GetDeliveryTrackingQueryHandler {
	return queries.NewGetDeliveryTrackingQueryHandler(c.uowFactory.Create(), c.authorizer)
}

func (c *CompositionRoot) CreateCalculateETAQueryHandler() queries.CalculateETAQueryHandler {
	return queries.NewCalculateETAQueryHandler(c.calculator, c.metrics)
}

func (c *CompositionRoot) CreateSubscribeQueryHandler() queries.SubscribeQueryHandler {
	return queries.NewSubscribeQueryHandler(c.uowFactory.Create(), c.hub, c.authorizer)
}

// CreateEarningsConsumer builds the consumer shared by the queue worker and
// the inline scheduler.
func (c *CompositionRoot) CreateEarningsConsumer() *worker.Consumer {
	return worker.NewConsumer(c.CreateUpdateDriverEarningsCommandHandler(), c.orders, c.logger)
}

// CreateHTTPServer assembles the HTTP adapter.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	handlers := httpadapter.Handlers{
		CreateDriver:         c.CreateCreateDriverCommandHandler(),
		UpdateDriverStatus:   c.CreateUpdateDriverStatusCommandHandler(),
		UpdateDriverLocation: c.CreateUpdateDriverLocationCommandHandler(),
		DeleteDriver:         c.CreateDeleteDriverCommandHandler(),
		UpdateDriverRating:   c.CreateUpdateDriverRatingCommandHandler(),
		StartDriverShift:     c.CreateStartDriverShiftCommandHandler(),
		EndDriverShift:       c.CreateEndDriverShiftCommandHandler(),
		AssignDriver:         c.CreateAssignDriverCommandHandler(),
		UpdateDeliveryStatus: c.CreateUpdateDeliveryStatusCommandHandler(),
		RecordLocationPing:   c.CreateRecordLocationPingCommandHandler(),
		UpdateDriverEarnings: c.CreateUpdateDriverEarningsCommandHandler(),
		RefreshPerformance:   c.CreateRefreshPerformanceCommandHandler(),

		GetDrivers:          c.CreateGetDriversQueryHandler(),
		GetDriverEarnings:   c.CreateGetDriverEarningsQueryHandler(),
		GetDriverShifts:     c.CreateGetDriverShiftsQueryHandler(),
		GetDeliveryTracking: c.CreateGetDeliveryTrackingQueryHandler(),
		CalculateETA:        c.CreateCalculateETAQueryHandler(),
		Subscribe:           c.CreateSubscribeQueryHandler(),
	}

	issuer := httpadapter.NewTokenIssuer(c.cfg.JWT.Secret, c.cfg.JWT.TTL, c.cfg.JWT.Issuer)
	return httpadapter.NewServer(handlers, issuer, c.clock, c.logger)
}

// CreateJobManager assembles the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateRefreshPerformanceCommandHandler(), c.cfg.Dispatch.RollupSchedule,
		c.cfg.StoreTimeout*10, c.logger)
}
