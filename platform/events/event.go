// Package events is the in-process publish/subscribe bus. Events are plain
// values identified by name; handlers subscribe by that name and run either
// detached (Publish) or inline (PublishSync).
package events

import (
	"context"
	"time"
)

// Event is anything published on the bus. EventName doubles as the
// subscription key and as the type tag when events cross process boundaries.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the UTC publication time; it serialises as "timestamp".
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed under their name.
type Bus interface {
	// Publish hands the event to every handler on its own goroutine and
	// returns at once; handler errors are logged.
	Publish(ctx context.Context, event Event)

	// PublishSync runs every handler before returning and joins their errors.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}
