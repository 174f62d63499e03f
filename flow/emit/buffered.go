package emit

import "sync"

// BufferedEmitter stores events in memory, grouped by request ID.
//
// It backs the tests of every package that emits and is handy for
// inspecting a single request while debugging. Events are never evicted
// automatically; call Clear.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // requestID -> events
}

// HistoryFilter selects events from a request's history. Empty fields match
// everything; set fields are combined with AND.
type HistoryFilter struct {
	FlowName string // Filter by building block flow name
	Msg      string // Filter by event name
	MinStep  *int   // Minimum step index (nil = no filter)
	MaxStep  *int   // Maximum step index (nil = no filter)
}

// NewBufferedEmitter creates a new BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.RequestID] = append(b.events[event.RequestID], event)
}

// GetHistory returns a copy of all events of requestID in emission order.
func (b *BufferedEmitter) GetHistory(requestID string) []Event {
	return b.GetHistoryWithFilter(requestID, HistoryFilter{})
}

// GetHistoryWithFilter returns the events of requestID matching filter.
// The result is never nil.
func (b *BufferedEmitter) GetHistoryWithFilter(requestID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := []Event{}
	for _, event := range b.events[requestID] {
		if filter.matches(event) {
			result = append(result, event)
		}
	}
	return result
}

func (f HistoryFilter) matches(event Event) bool {
	if f.FlowName != "" && event.FlowName != f.FlowName {
		return false
	}
	if f.Msg != "" && event.Msg != f.Msg {
		return false
	}
	if f.MinStep != nil && event.Step < *f.MinStep {
		return false
	}
	if f.MaxStep != nil && event.Step > *f.MaxStep {
		return false
	}
	return true
}

// Clear removes the events of requestID, or of every request when requestID
// is empty.
func (b *BufferedEmitter) Clear(requestID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if requestID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, requestID)
}
