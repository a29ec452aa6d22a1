package session

import (
	"sync"
	"time"
)

// EventType names a session event on the stream
type EventType string

const (
	EventCrash      EventType = "crash"
	EventMode       EventType = "mode"
	EventLoading    EventType = "loading"
	EventTabs       EventType = "tabs"
	EventFrame      EventType = "frame"
	EventDiagnostic EventType = "diagnostic"
	EventWindow     EventType = "window"
	EventClosed     EventType = "closed"
)

// Event is one state change published by a session
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"sessionId"`
	Time      time.Time   `json:"time"`
	Data      interface{} `json:"data,omitempty"`
}

// Broker fans events out to subscribers. Slow subscribers miss events
// rather than blocking the publisher.
type Broker struct {
	buffer int

	mu     sync.RWMutex
	subs   map[uint64]chan Event
	next   uint64
	closed bool
}

// NewBroker creates a broker with per-subscriber buffer size
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broker{
		buffer: buffer,
		subs:   make(map[uint64]chan Event),
	}
}

// Subscribe returns an event channel and a function that cancels it.
// The channel is closed on cancel or when the broker closes.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	key := b.next
	b.next++
	b.subs[key] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[key]; ok {
				delete(b.subs, key)
				close(sub)
			}
		})
	}
}

// Publish delivers ev to every subscriber with room in its buffer
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription; later publishes are dropped
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for key, ch := range b.subs {
		delete(b.subs, key)
		close(ch)
	}
}
