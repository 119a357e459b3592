// Package pubsub is an in-process publish/subscribe broker keyed by a filter
// value such as an order or driver identifier.
//
// Every message is a full-state snapshot. A subscriber that falls behind keeps
// only the newest snapshot for its key, so consumers must apply messages as
// replace-state and never as increments.
package pubsub

import (
	"context"
	"sync"
)

// Broker fans values of type T out to the subscribers of a key.
// The zero value is not usable; create brokers with NewBroker.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription[T]]struct{}
	closed bool
}

type subscription[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[string]map[*subscription[T]]struct{})}
}

// Subscribe registers for values published under key. The returned channel is
// closed when ctx is done or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context, key string) <-chan T {
	s := &subscription[T]{ch: make(chan T, 1)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.close()
		return s.ch
	}
	if b.subs[key] == nil {
		b.subs[key] = make(map[*subscription[T]]struct{})
	}
	b.subs[key][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(key, s)
	}()

	return s.ch
}

// Publish delivers v to every subscriber of key without blocking.
func (b *Broker[T]) Publish(key string, v T) {
	b.mu.RLock()
	targets := make([]*subscription[T], 0, len(b.subs[key]))
	for s := range b.subs[key] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		s.offer(v)
	}
}

// Subscribers returns how many subscriptions key currently has.
func (b *Broker[T]) Subscribers(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key])
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[string]map[*subscription[T]]struct{})
	b.closed = true
	b.mu.Unlock()

	for _, set := range subs {
		for s := range set {
			s.close()
		}
	}
}

func (b *Broker[T]) remove(key string, s *subscription[T]) {
	b.mu.Lock()
	if set, ok := b.subs[key]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, key)
		}
	}
	b.mu.Unlock()
	s.close()
}

// offer replaces any undelivered value with v.
func (s *subscription[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- v:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

func (s *subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
