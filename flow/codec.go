package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = []byte("null")

// DecodeExecutionPath decodes a persisted path.
//
// Unknown fields are ignored and absent or null optional fields decode to
// their zero value. Step order is preserved. Blank input and a JSON null
// return ErrEmptyExecutionPath; any other non-array value returns an error
// wrapping ErrInvalidExecutionPath. An empty array decodes to an empty,
// non-nil path.
func DecodeExecutionPath(data []byte) (ExecutionPath, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, ErrEmptyExecutionPath
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidExecutionPath)
	}

	path := ExecutionPath{}
	if err := json.Unmarshal(trimmed, &path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExecutionPath, err)
	}
	return path, nil
}

// EncodeExecutionPath encodes path as a JSON array. A nil path encodes as [].
func EncodeExecutionPath(path ExecutionPath) ([]byte, error) {
	if path == nil {
		path = ExecutionPath{}
	}
	data, err := json.Marshal(path)
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution path: %w", err)
	}
	return data, nil
}
