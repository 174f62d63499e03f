package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPath() ExecutionPath {
	return ExecutionPath{
		{BuildingBlock: BuildingBlock{MsoID: "m1", BpmnFlowName: "AssignServiceInstanceBB"}},
		{BuildingBlock: BuildingBlock{MsoID: "m2", BpmnFlowName: "AssignNetworkBB"}},
		{BuildingBlock: BuildingBlock{MsoID: "m3", BpmnFlowName: "CreateNetworkBB"}},
		{BuildingBlock: BuildingBlock{MsoID: "m4", BpmnFlowName: "ActivateNetworkBB"}},
	}
}

func TestPlan_All(t *testing.T) {
	plan := NewPlan(testPath())
	require.Equal(t, 4, plan.Len())

	var names []string
	var indexes []int
	for i, step := range plan.All() {
		indexes = append(indexes, i)
		names = append(names, step.FlowName())
	}
	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
	assert.Equal(t, testPath().Names(), names)
}

func TestPlan_AllStopsEarly(t *testing.T) {
	plan := NewPlan(testPath())
	count := 0
	for range plan.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestPlan_Immutable(t *testing.T) {
	path := testPath()
	plan := NewPlan(path)
	path[0].BuildingBlock.BpmnFlowName = "changed"

	step, ok := plan.Step(0)
	require.True(t, ok)
	assert.Equal(t, "AssignServiceInstanceBB", step.FlowName())

	out := plan.Path()
	out[1].BuildingBlock.BpmnFlowName = "changed"
	step, _ = plan.Step(1)
	assert.Equal(t, "AssignNetworkBB", step.FlowName())
}

func TestPlan_Step(t *testing.T) {
	plan := NewPlan(testPath())
	_, ok := plan.Step(-1)
	assert.False(t, ok)
	_, ok = plan.Step(4)
	assert.False(t, ok)

	var zero Plan
	assert.Equal(t, 0, zero.Len())
	_, ok = zero.Step(0)
	assert.False(t, ok)
}

func TestPlan_ResumeAfter(t *testing.T) {
	plan := NewPlan(testPath())

	rest, err := plan.ResumeAfter("m2")
	require.NoError(t, err)
	assert.Equal(t, []string{"CreateNetworkBB", "ActivateNetworkBB"}, rest.Path().Names())

	rest, err = plan.ResumeAfter("m4")
	require.NoError(t, err)
	assert.Equal(t, 0, rest.Len())

	_, err = plan.ResumeAfter("unknown")
	assert.ErrorIs(t, err, ErrStepNotInPlan)
}

func TestPlan_From(t *testing.T) {
	plan := NewPlan(testPath())
	assert.Equal(t, 4, plan.From(-3).Len())
	assert.Equal(t, 1, plan.From(3).Len())
	assert.Equal(t, 0, plan.From(10).Len())
}
