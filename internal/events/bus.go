// ABOUTME: In-process publish/subscribe for completion signals from the engine.
// ABOUTME: Delivery is synchronous and in publish order; handlers must not block.
package events

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Topic names a kind of event.
type Topic string

const (
	// HistoryRefreshed fires after session rows change.
	HistoryRefreshed Topic = "history.refreshed"
	// RoutinesRefreshed fires after routine rows change.
	RoutinesRefreshed Topic = "routines.refreshed"
	// Bootstrapped fires after first-launch seeding completes.
	Bootstrapped Topic = "bootstrap.completed"
)

// Event is one published signal.
type Event struct {
	ID        uuid.UUID
	Topic     Topic
	UserID    int64
	SessionID int64
	At        time.Time
}

// Handler receives events for a topic.
type Handler func(Event)

// Publisher is what the engine needs to emit signals.
type Publisher interface {
	Publish(topic Topic, userID, sessionID int64) Event
}

// Bus fans events out to subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic]map[uint64]Handler
	nextID   uint64
	now      func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Topic]map[uint64]Handler),
		now:      time.Now,
	}
}

// Subscribe registers h for a topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[uint64]Handler)
	}
	b.handlers[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[topic], id)
		})
	}
}

// Publish delivers an event to every current subscriber of topic, in
// subscription order, and returns it.
func (b *Bus) Publish(topic Topic, userID, sessionID int64) Event {
	e := Event{
		ID:        uuid.New(),
		Topic:     topic,
		UserID:    userID,
		SessionID: sessionID,
		At:        b.now(),
	}

	b.mu.RLock()
	ids := make([]uint64, 0, len(b.handlers[topic]))
	for id := range b.handlers[topic] {
		ids = append(ids, id)
	}
	handlers := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, b.handlers[topic][id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
	return e
}

// Subscribers returns the number of handlers registered for a topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

// Nop discards every event.
type Nop struct{}

// Publish returns the event without delivering it.
func (Nop) Publish(topic Topic, userID, sessionID int64) Event {
	return Event{ID: uuid.New(), Topic: topic, UserID: userID, SessionID: sessionID, At: time.Now()}
}
