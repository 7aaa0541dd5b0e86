// Package events is a small in-process publish/subscribe bus. Components
// that announce changes (the category store) and components that react to
// them (views, the API's cache) receive the bus through their constructors.
package events

import (
	"sync"
)

// Topic names an event stream.
type Topic string

// CategoriesUpdated fires after a category is created, updated, removed or
// replaced by reconciliation.
const CategoriesUpdated Topic = "categories.updated"

// LoginRequired fires when an action was parked until someone signs in.
const LoginRequired Topic = "session.login_required"

// Event is what subscribers receive.
type Event struct {
	Topic Topic
	// ID of the affected record, empty for bulk changes.
	ID string
	// ReturnTo is where the UI should go back to after a login prompt.
	ReturnTo string
}

type Handler func(Event)

// Publisher is the half of the bus producers depend on.
type Publisher interface {
	Publish(e Event)
}

type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic]map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
		})
	}
}

// Publish calls every handler of e.Topic synchronously, outside the lock,
// so handlers may subscribe or unsubscribe.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subs[e.Topic]))
	for _, h := range b.subs[e.Topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(Event) {}
