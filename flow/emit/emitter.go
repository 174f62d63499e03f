// Package emit delivers replay and resolution events to observability
// backends.
package emit

// Emitter receives events produced while execution paths are loaded, saved
// and resolved.
//
// Implementations must be safe for concurrent use and must not block the
// caller for long: resolution fans out across goroutines and every one of
// them may emit.
type Emitter interface {
	// Emit sends an event to the configured backend. Emit should not panic;
	// delivery failures are handled internally.
	Emit(event Event)
}

// Multi fans an event out to several emitters in order.
type Multi []Emitter

// Emit forwards event to every emitter.
func (m Multi) Emit(event Event) {
	for _, e := range m {
		if e != nil {
			e.Emit(event)
		}
	}
}
