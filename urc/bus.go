package urc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Next after the Bus has been closed.
var ErrClosed = errors.New("urc: bus closed")

// LaggedError reports events dropped because the subscriber fell behind.
type LaggedError struct {
	Count uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("urc: subscriber lagged, %d events dropped", e.Count)
}

// Bus is a bounded broadcast of events. A slow subscriber loses its oldest
// pending events; the number lost is reported through Lagged or Next.
type Bus struct {
	mu       sync.Mutex
	capacity int
	subs     map[*Subscription]struct{}
	closed   bool
}

func NewBus(capacity int) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{
		capacity: capacity,
		subs:     make(map[*Subscription]struct{}),
	}
}

// Subscription receives every event published after it was created.
type Subscription struct {
	bus    *Bus
	ch     chan Event
	lagged atomic.Uint64
}

// Subscribe registers a new subscriber.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{bus: b, ch: make(chan Event, b.capacity)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers ev to all subscribers without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		for {
			select {
			case s.ch <- ev:
			default:
				select {
				case <-s.ch:
					s.lagged.Add(1)
				default:
				}
				continue
			}
			break
		}
	}
}

// Close ends all subscriptions.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}

// C returns the channel events are delivered on. It is closed when the Bus
// is closed or the subscription is cancelled.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Lagged returns the number of events dropped since the previous call.
func (s *Subscription) Lagged() uint64 {
	return s.lagged.Swap(0)
}

// Next waits for the next event. If events were dropped since the last call
// it returns a *LaggedError first.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	if n := s.Lagged(); n > 0 {
		return Event{}, &LaggedError{Count: n}
	}
	select {
	case ev, ok := <-s.ch:
		if !ok {
			return Event{}, ErrClosed
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Cancel removes the subscription from its Bus.
func (s *Subscription) Cancel() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}
