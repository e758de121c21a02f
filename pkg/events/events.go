package events

import (
	"sync"
	"time"

	"github.com/fluxorio/todo-service/pkg/todo"
)

// Type identifies the kind of change an event describes
type Type string

const (
	TypeCreated Type = "todo.created"
	TypeUpdated Type = "todo.updated"
	TypeDeleted Type = "todo.deleted"
	TypeToggled Type = "todo.toggled"
)

// Event describes a single todo mutation
// Todo is nil for delete events; ID always identifies the affected record
type Event struct {
	Type Type       `json:"type"`
	ID   string     `json:"id"`
	Todo *todo.Todo `json:"todo,omitempty"`
	At   time.Time  `json:"at"`
}

// Publisher publishes change events after successful mutations
type Publisher interface {
	Publish(event Event) error
}

// PublisherFunc adapts a function to the Publisher interface
type PublisherFunc func(event Event) error

func (f PublisherFunc) Publish(event Event) error {
	return f(event)
}

// Bus is an in-process fanout publisher
// Subscribers receive events on buffered channels; slow subscribers drop
// events instead of blocking the mutation path
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBus creates an in-process event bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns its channel plus a cancel func
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than stall the mutation
		}
	}
	return nil
}

// Close shuts the bus down and closes all subscriber channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Multi fans a single Publish out to several publishers, returning the
// first error encountered
func Multi(publishers ...Publisher) Publisher {
	return PublisherFunc(func(event Event) error {
		var first error
		for _, p := range publishers {
			if p == nil {
				continue
			}
			if err := p.Publish(event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
