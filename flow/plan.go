package flow

import (
	"fmt"
	"iter"
)

// Plan is an immutable, replayable view of an execution path.
//
// The zero value is an empty plan. Plans returned by From and ResumeAfter
// share no memory with the receiver that callers could mutate.
type Plan struct {
	steps []ExecuteBuildingBlock
}

// NewPlan returns a plan over a copy of path.
func NewPlan(path ExecutionPath) Plan {
	steps := make([]ExecuteBuildingBlock, len(path))
	copy(steps, path)
	return Plan{steps: steps}
}

// Len returns the number of steps.
func (p Plan) Len() int {
	return len(p.steps)
}

// Step returns the step at index i. ok is false when i is out of range.
func (p Plan) Step(i int) (step ExecuteBuildingBlock, ok bool) {
	if i < 0 || i >= len(p.steps) {
		return ExecuteBuildingBlock{}, false
	}
	return p.steps[i], true
}

// All yields (index, step) pairs in persisted order.
func (p Plan) All() iter.Seq2[int, ExecuteBuildingBlock] {
	return func(yield func(int, ExecuteBuildingBlock) bool) {
		for i, step := range p.steps {
			if !yield(i, step) {
				return
			}
		}
	}
}

// From returns the plan starting at index. An index past the end yields an
// empty plan; a negative index is treated as zero.
func (p Plan) From(index int) Plan {
	if index < 0 {
		index = 0
	}
	if index >= len(p.steps) {
		return Plan{}
	}
	return NewPlan(p.steps[index:])
}

// ResumeAfter returns the steps following the step whose mso-id is msoID.
// If the matching step is the last one the result is empty.
func (p Plan) ResumeAfter(msoID string) (Plan, error) {
	for i, step := range p.steps {
		if step.BuildingBlock.MsoID == msoID {
			return p.From(i + 1), nil
		}
	}
	return Plan{}, fmt.Errorf("%w: mso-id %q", ErrStepNotInPlan, msoID)
}

// Path returns a copy of the steps as an ExecutionPath.
func (p Plan) Path() ExecutionPath {
	path := make(ExecutionPath, len(p.steps))
	copy(path, p.steps)
	return path
}
