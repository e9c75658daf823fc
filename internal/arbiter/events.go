package arbiter

// Event represents an arbiter lifecycle event.
// Minimal and stable: name + lane id and optional fields via key/values.
type Event struct {
	Name   string
	LaneID string
	Fields map[string]any
}

// EventPublisher receives events from the arbiter. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
