// Package notifier delivers push messages about orders. Messages are fire and
// forget: the dispatch core logs a failed delivery and moves on.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/streadway/amqp"
)

const DefaultQueue = "dispatch.notifications"

// Message is the body published for every notification.
type Message struct {
	OrderID string    `json:"order_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// publisher is the part of an AMQP channel the notifier uses.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// session is one open connection and channel with the queue declared. closed
// fires when the broker or the network drops either of them.
type session struct {
	ch     publisher
	closed <-chan *amqp.Error
	close  func() error
}

type dialer func(url, queue string) (session, error)

// AMQPNotifier publishes notifications to a durable RabbitMQ queue consumed by
// the push gateway. A dropped connection is redialed on the next Notify.
type AMQPNotifier struct {
	mu       sync.Mutex
	url      string
	queue    string
	dial     dialer
	session  *session
	shutdown bool
}

// DialAMQP connects to the broker and declares queue. An empty queue uses
// DefaultQueue.
func DialAMQP(url, queue string) (*AMQPNotifier, error) {
	return newAMQPNotifier(url, queue, dialAMQP)
}

func newAMQPNotifier(url, queue string, dial dialer) (*AMQPNotifier, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	n := &AMQPNotifier{url: url, queue: queue, dial: dial}
	if err := n.connect(); err != nil {
		return nil, err
	}
	return n, nil
}

func dialAMQP(url, queue string) (session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return session{}, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return session{}, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return session{}, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return session{
		ch:     ch,
		closed: ch.NotifyClose(make(chan *amqp.Error, 1)),
		close: func() error {
			_ = ch.Close()
			return conn.Close()
		},
	}, nil
}

// connect replaces the current session. Callers hold mu or own n exclusively.
func (n *AMQPNotifier) connect() error {
	if n.session != nil {
		_ = n.session.close()
		n.session = nil
	}
	s, err := n.dial(n.url, n.queue)
	if err != nil {
		return err
	}
	n.session = &s
	return nil
}

func (n *AMQPNotifier) alive() bool {
	if n.session == nil {
		return false
	}
	select {
	case <-n.session.closed:
		return false
	default:
		return true
	}
}

func (n *AMQPNotifier) Notify(_ context.Context, orderID kernel.UUID, message string) error {
	body, err := json.Marshal(Message{OrderID: orderID.String(), Message: message, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shutdown {
		return errs.NewExternalProviderError("notification service", amqp.ErrClosed)
	}
	if !n.alive() {
		if err = n.connect(); err != nil {
			return errs.NewExternalProviderError("notification service", err)
		}
	}

	err = n.session.ch.Publish("", n.queue, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		if err = n.connect(); err == nil {
			err = n.session.ch.Publish("", n.queue, false, false, msg)
		}
	}
	if err != nil {
		return errs.NewExternalProviderError("notification service", err)
	}
	return nil
}

// Close releases the channel and connection. Later calls to Notify fail.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.shutdown = true
	if n.session == nil {
		return nil
	}
	err := n.session.close()
	n.session = nil
	return err
}

// LogNotifier writes notifications to the log. It backs deployments without a
// push gateway.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return LogNotifier{logger: logger.With("component", "notifier")}
}

func (n LogNotifier) Notify(ctx context.Context, orderID kernel.UUID, message string) error {
	n.logger.InfoContext(ctx, "notification", "order_id", orderID.String(), "message", message)
	return nil
}
