// Package events emits tracking and driver snapshots to Kafka as integration
// events for downstream consumers such as billing and analytics.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/IBM/sarama"
)

const (
	DefaultTrackingTopic = "dispatch.tracking"
	DefaultDriverTopic   = "dispatch.drivers"

	TypeTrackingUpdated = "tracking.updated"
	TypeDriverUpdated   = "driver.updated"
)

// Event wraps a snapshot with its type and emission time.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Topics names the destination topics.
type Topics struct {
	Tracking string
	Drivers  string
}

// KafkaPublisher sends one event per snapshot. Tracking events are keyed by
// order and driver events by driver, so each stream stays ordered per key.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topics   Topics
}

// NewProducerConfig returns the producer settings used in production.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Net.WriteTimeout = 10 * time.Second
	return cfg
}

// DialKafka connects a synchronous producer to a comma-separated broker list.
func DialKafka(brokers string, topics Topics) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisher(producer, topics), nil
}

// NewKafkaPublisher wraps producer. Empty topics use the defaults.
func NewKafkaPublisher(producer sarama.SyncProducer, topics Topics) *KafkaPublisher {
	if topics.Tracking == "" {
		topics.Tracking = DefaultTrackingTopic
	}
	if topics.Drivers == "" {
		topics.Drivers = DefaultDriverTopic
	}
	return &KafkaPublisher{producer: producer, topics: topics}
}

func (p *KafkaPublisher) PublishTracking(_ context.Context, snapshot tracking.Snapshot) error {
	return p.send(p.topics.Tracking, snapshot.OrderID.String(), Event{
		Type:       TypeTrackingUpdated,
		OccurredAt: snapshot.UpdatedAt,
		Payload:    snapshot,
	})
}

func (p *KafkaPublisher) PublishDriver(_ context.Context, snapshot driver.Snapshot) error {
	return p.send(p.topics.Drivers, snapshot.ID.String(), Event{
		Type:       TypeDriverUpdated,
		OccurredAt: snapshot.UpdatedAt,
		Payload:    snapshot,
	})
}

func (p *KafkaPublisher) send(topic, key string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", event.Type, topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
