package emit

// Event describes something that happened to a request's execution path.
type Event struct {
	// RequestID identifies the orchestration request the event belongs to.
	RequestID string

	// Step is the zero-based index of the building block in the path, or -1
	// for path-level events.
	Step int

	// FlowName is the building block's flow name (e.g. "AssignNetworkBB").
	// Empty for path-level events.
	FlowName string

	// Msg names the event, e.g. "path_loaded" or "step_resolved".
	Msg string

	// Meta carries event specific data. Common keys:
	//   - "error": error text
	//   - "steps": number of steps in a path
	//   - "original_request_id": request the path was replayed from
	//   - "duration": time.Duration of the operation
	Meta map[string]any
}

// Common event names.
const (
	MsgPathLoaded   = "path_loaded"
	MsgPathSaved    = "path_saved"
	MsgPathNotFound = "path_not_found"
	MsgStepResolved = "step_resolved"
	MsgStepFailed   = "step_failed"
	MsgArchived     = "path_archived"
)
