package events

// Event represents a structured state change emitted by the engine.
type Event interface {
	EventType() string
	// Attributes renders the payload as a flat wire-friendly map for
	// downstream subscribers (logs, metrics, indexers).
	Attributes() map[string]string
}

// Emitter broadcasts events to downstream subscribers.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}
