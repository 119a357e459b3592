// Package worker runs the asynchronous accounting path: it consumes earnings
// tasks and credits each delivery through the earnings use case.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
	"github.com/hibiken/asynq"
)

// EarningsRecorder is the use case that credits a delivery.
type EarningsRecorder interface {
	Handle(ctx context.Context, cmd commands.UpdateDriverEarningsCommand) (driver.Snapshot, error)
}

// Consumer turns earnings tasks into UpdateDriverEarnings commands. Tasks run
// with the system principal.
type Consumer struct {
	recorder EarningsRecorder
	orders   ports.OrderGateway
	logger   *slog.Logger
}

// NewConsumer creates a consumer. orders supplies the total each commission is
// computed from.
func NewConsumer(recorder EarningsRecorder, orders ports.OrderGateway, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{recorder: recorder, orders: orders, logger: logger.With("component", "earnings-worker")}
}

// Register attaches the task handlers to mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskRecordEarnings, c.handleRecordEarnings)
}

func (c *Consumer) handleRecordEarnings(ctx context.Context, t *asynq.Task) error {
	task, err := queue.ParseEarningsTask(t)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping malformed earnings task", "error", err)
		return err
	}
	return c.Process(ctx, task)
}

// Process credits one delivery. Errors that retrying cannot fix are marked so
// the queue drops the task.
func (c *Consumer) Process(ctx context.Context, task ports.EarningsTask) error {
	ctx = kernel.WithPrincipal(ctx, kernel.SystemPrincipal())

	o, err := c.orders.Get(ctx, task.OrderID)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		c.logger.WarnContext(ctx, "dropping earnings task for unknown order",
			"order_id", task.OrderID.String(), "tracking_id", task.TrackingID.String(), "error", err)
		return errors.Join(err, asynq.SkipRetry)
	case err != nil:
		c.logger.ErrorContext(ctx, "order lookup failed for earnings task",
			"order_id", task.OrderID.String(), "tracking_id", task.TrackingID.String(), "error", err)
		return err
	}

	trackingID := task.TrackingID
	cmd, err := commands.NewUpdateDriverEarningsCommand(task.DriverID, o.Total(), task.DeliveryMinutes, &trackingID)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping invalid earnings task",
			"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String(), "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}

	_, err = c.recorder.Handle(ctx, cmd)
	switch {
	case err == nil:
		c.logger.InfoContext(ctx, "earnings recorded",
			"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String())
		return nil
	case errors.Is(err, errs.ErrObjectNotFound), errors.Is(err, errs.ErrPermissionDenied):
		c.logger.WarnContext(ctx, "earnings task cannot be applied",
			"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String(), "error", err)
		return errors.Join(err, asynq.SkipRetry)
	default:
		c.logger.ErrorContext(ctx, "failed to record earnings",
			"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String(), "error", err)
		return err
	}
}

// InlineScheduler credits deliveries in the caller's goroutine. It backs
// deployments without a queue. A retryable failure is handed to a background
// goroutine that keeps trying with exponential backoff, so the caller never
// waits on the accounting path twice.
type InlineScheduler struct {
	consumer   *Consumer
	maxElapsed time.Duration
}

func NewInlineScheduler(consumer *Consumer) InlineScheduler {
	return InlineScheduler{consumer: consumer, maxElapsed: 10 * time.Minute}
}

func (s InlineScheduler) ScheduleEarnings(ctx context.Context, task ports.EarningsTask) error {
	err := s.consumer.Process(ctx, task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		return err
	}

	s.consumer.logger.WarnContext(ctx, "earnings retry scheduled",
		"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String())
	go s.retry(context.WithoutCancel(ctx), task)
	return nil
}

func (s InlineScheduler) retry(ctx context.Context, task ports.EarningsTask) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = s.maxElapsed

	err := backoff.Retry(func() error {
		err := s.consumer.Process(ctx, task)
		if errors.Is(err, asynq.SkipRetry) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		s.consumer.logger.ErrorContext(ctx, "giving up on earnings task",
			"driver_id", task.DriverID.String(), "tracking_id", task.TrackingID.String(), "error", err)
	}
}

// Service owns the asynq server.
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService creates a worker service for cfg.
func NewService(cfg queue.Config, consumer *Consumer) *Service {
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(cfg.RedisOpt(), cfg.ServerConfig()),
		mux:    mux,
	}
}

// Start runs the server until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}
