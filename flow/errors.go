package flow

import (
	"errors"
	"fmt"

	"github.com/dshills/bbflow/flow/store"
)

var (
	// ErrEmptyExecutionPath is returned when decoding blank input or a JSON null.
	ErrEmptyExecutionPath = errors.New("execution path is empty")

	// ErrInvalidExecutionPath is returned when the persisted value is not a
	// JSON array of steps.
	ErrInvalidExecutionPath = errors.New("invalid execution path")

	// ErrExecutionPathNotFound is returned when no usable path is persisted
	// for a request. It also matches store.ErrNotFound.
	ErrExecutionPathNotFound = fmt.Errorf("execution path %w", store.ErrNotFound)

	// ErrNoOriginalRequest is returned when the original path of a request is
	// asked for but the request does not reference an original request.
	ErrNoOriginalRequest = errors.New("request has no original request id")

	// ErrStepNotInPlan is returned by Plan.ResumeAfter when no step carries
	// the given mso-id.
	ErrStepNotInPlan = errors.New("step not in plan")

	// ErrMissingFlowName is wrapped by StepError for steps without a
	// bpmn-flow-name.
	ErrMissingFlowName = errors.New("bpmn-flow-name is required")
)

// StepError reports a problem with a single step of a path.
type StepError struct {
	Index int
	MsoID string
	Err   error
}

func (e *StepError) Error() string {
	if e.MsoID != "" {
		return fmt.Sprintf("step %d (%s): %v", e.Index, e.MsoID, e.Err)
	}
	return fmt.Sprintf("step %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
