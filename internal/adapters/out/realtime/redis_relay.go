package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTrackingChannel = "dispatch:tracking"
	DefaultDriverChannel   = "dispatch:drivers"
)

type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay mirrors snapshots across instances through Redis pub/sub. Publish
// sends a snapshot to the other instances; Run delivers theirs into the local
// hub. Messages an instance sent itself are skipped on the way back.
type RedisRelay struct {
	client          *redis.Client
	hub             *Hub
	origin          string
	trackingChannel string
	driverChannel   string
	logger          *slog.Logger
}

// NewRedisRelay creates a relay feeding hub.
func NewRedisRelay(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{
		client:          client,
		hub:             hub,
		origin:          kernel.NewUUID().String(),
		trackingChannel: DefaultTrackingChannel,
		driverChannel:   DefaultDriverChannel,
		logger:          logger.With("component", "redis-relay"),
	}
}

func (r *RedisRelay) PublishTracking(ctx context.Context, snapshot tracking.Snapshot) error {
	return r.publish(ctx, r.trackingChannel, snapshot)
}

func (r *RedisRelay) PublishDriver(ctx context.Context, snapshot driver.Snapshot) error {
	return r.publish(ctx, r.driverChannel, snapshot)
}

func (r *RedisRelay) publish(ctx context.Context, channel string, snapshot any) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	body, err := json.Marshal(envelope{Origin: r.origin, Payload: payload})
	if err != nil {
		return err
	}
	if err = r.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("relay publish to %s: %w", channel, err)
	}
	return nil
}

// Run relays snapshots from other instances until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.trackingChannel, r.driverChannel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("relay subscribe: %w", err)
	}
	r.logger.Info("relay subscribed", "channels", []string{r.trackingChannel, r.driverChannel})

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, msg *redis.Message) {
	var env envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.logger.Warn("dropping malformed relay message", "channel", msg.Channel, "error", err)
		return
	}
	if env.Origin == r.origin {
		return
	}

	var err error
	switch msg.Channel {
	case r.trackingChannel:
		var s tracking.Snapshot
		if err = json.Unmarshal(env.Payload, &s); err == nil {
			err = r.hub.PublishTracking(ctx, s)
		}
	case r.driverChannel:
		var s driver.Snapshot
		if err = json.Unmarshal(env.Payload, &s); err == nil {
			err = r.hub.PublishDriver(ctx, s)
		}
	}
	if err != nil {
		r.logger.Warn("dropping relay message", "channel", msg.Channel, "error", err)
	}
}
