package core

import (
	"sync"
	"time"
)

// Domain event kinds.
const (
	EventTaskAssigned         = "task.assigned"
	EventTaskStatusChanged    = "task.status_changed"
	EventDeliverableUploaded  = "deliverable.uploaded"
	EventDeliverableSubmitted = "deliverable.submitted"
	EventDeliverableReviewed  = "deliverable.reviewed"
	EventProjectCreated       = "project.created"
)

// Event is a domain occurrence published on the Bus. Ref points at the
// record the event is about (task ID, deliverable ID, project ID).
type Event struct {
	Kind       string
	Ref        string
	ProjectID  string
	ActorID    string
	TargetID   string // user the event concerns (assignee, uploader)
	Title      string
	Body       string
	OccurredAt time.Time // UTC
}

// EventHandler consumes a published Event.
type EventHandler func(Event)

// Bus is an in-process publish/subscribe hub. Subscribers register callbacks
// once at wiring time; Publish never blocks on slow consumers.
type Bus struct {
	mu       sync.RWMutex
	handlers []EventHandler
	sync     bool
}

// NewBus returns a Bus that runs each handler on its own goroutine.
func NewBus() *Bus {
	return &Bus{}
}

// NewSyncBus returns a Bus that runs handlers inline. For tests and CLI use.
func NewSyncBus() *Bus {
	return &Bus{sync: true}
}

func (b *Bus) Subscribe(h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if b.sync {
			h(evt)
		} else {
			go h(evt)
		}
	}
}
