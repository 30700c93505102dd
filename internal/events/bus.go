// Package events provides the in-process event bus decoupling the
// supervisor from its consumers (SSE clients, metrics, CLI output).
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(TrainingProgressEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so each variant
	// needs its own call to the generic Publish.
	switch e := ev.(type) {
	case TrainingStartedEvent:
		event.Publish(b.dispatcher, e)
	case TrainingProgressEvent:
		event.Publish(b.dispatcher, e)
	case TrainingExitedEvent:
		event.Publish(b.dispatcher, e)
	case RawLineEvent:
		event.Publish(b.dispatcher, e)
	case PhaseChangedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives. Returns an
// unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e TrainingProgressEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(TrainingStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TrainingProgressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TrainingExitedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(RawLineEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PhaseChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
