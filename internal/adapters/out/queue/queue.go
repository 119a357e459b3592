// Package queue hands completed deliveries to the accounting worker through an
// asynq queue on Redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/ports"

	"github.com/hibiken/asynq"
)

const (
	// TaskRecordEarnings credits one delivered order to its driver.
	TaskRecordEarnings = "earnings:record"

	DefaultQueue       = "accounting"
	DefaultConcurrency = 10
	DefaultMaxRetry    = 8
)

// Config selects the Redis instance and worker sizing.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Queue       string
	Concurrency int
	MaxRetry    int
}

func (c Config) queue() string {
	if c.Queue == "" {
		return DefaultQueue
	}
	return c.Queue
}

// RedisOpt builds the asynq connection options.
func (c Config) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

// ServerConfig builds the worker configuration.
func (c Config) ServerConfig() asynq.Config {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{c.queue(): 1},
	}
}

// NewEarningsTask encodes an earnings task. The task id is derived from the
// tracking record, so a delivery is enqueued at most once while its task is
// retained.
func NewEarningsTask(task ports.EarningsTask) (*asynq.Task, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordEarnings, body, asynq.TaskID("earnings:"+task.TrackingID.String())), nil
}

// ParseEarningsTask decodes the payload of an earnings task.
func ParseEarningsTask(t *asynq.Task) (ports.EarningsTask, error) {
	var task ports.EarningsTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return ports.EarningsTask{}, fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return task, nil
}

// EarningsQueue is the queued ports.EarningsScheduler.
type EarningsQueue struct {
	client    *asynq.Client
	queue     string
	maxRetry  int
	retention time.Duration
}

// NewEarningsQueue creates a client on cfg's Redis.
func NewEarningsQueue(cfg Config) *EarningsQueue {
	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetry
	}
	return &EarningsQueue{
		client:    asynq.NewClient(cfg.RedisOpt()),
		queue:     cfg.queue(),
		maxRetry:  maxRetry,
		retention: 24 * time.Hour,
	}
}

// ScheduleEarnings enqueues the task. A task already enqueued for the same
// delivery is not an error.
func (q *EarningsQueue) ScheduleEarnings(ctx context.Context, task ports.EarningsTask) error {
	t, err := NewEarningsTask(task)
	if err != nil {
		return err
	}

	_, err = q.client.EnqueueContext(ctx, t,
		asynq.Queue(q.queue),
		asynq.MaxRetry(q.maxRetry),
		asynq.Retention(q.retention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// Close releases the Redis connection.
func (q *EarningsQueue) Close() error {
	return q.client.Close()
}
