package queue_test

import (
	"errors"
	"testing"

	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarningsTask(t *testing.T) {
	t.Run("round trips the payload", func(t *testing.T) {
		// Given
		in := ports.EarningsTask{
			DriverID:        kernel.NewUUID(),
			TrackingID:      kernel.NewUUID(),
			OrderID:         kernel.NewUUID(),
			DeliveryMinutes: 40,
		}

		// When
		task, err := queue.NewEarningsTask(in)
		require.NoError(t, err)
		out, err := queue.ParseEarningsTask(task)

		// Then
		require.NoError(t, err)
		assert.Equal(t, queue.TaskRecordEarnings, task.Type())
		assert.Equal(t, in.DriverID, out.DriverID)
		assert.Equal(t, in.TrackingID, out.TrackingID)
		assert.Equal(t, in.OrderID, out.OrderID)
		assert.InDelta(t, 40.0, out.DeliveryMinutes, 1e-9)
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		_, err := queue.ParseEarningsTask(asynq.NewTask(queue.TaskRecordEarnings, []byte("{")))

		assert.True(t, errors.Is(err, asynq.SkipRetry))
	})
}

func TestConfig_ServerConfig(t *testing.T) {
	cfg := queue.Config{Addr: "localhost:6379"}.ServerConfig()

	assert.Equal(t, queue.DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, map[string]int{queue.DefaultQueue: 1}, cfg.Queues)
}
