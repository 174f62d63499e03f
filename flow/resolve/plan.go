package resolve

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/emit"
	"github.com/dshills/bbflow/flow/inventory"
)

// StepInputs holds the inventory objects referenced by one step's workflow
// resource ids. Fields stay nil when the step carries no id for them or the
// object does not exist. VolumeGroup is read under the step's cloud region
// when the request details name one, and through /nodes otherwise.
type StepInputs struct {
	Index           int                        `json:"index"`
	Step            flow.ExecuteBuildingBlock  `json:"step"`
	CloudRegion     *inventory.CloudRegion     `json:"cloudRegion,omitempty"`
	ServiceInstance *inventory.ServiceInstance `json:"serviceInstance,omitempty"`
	GenericVnf      *inventory.GenericVnf      `json:"genericVnf,omitempty"`
	VfModule        *inventory.VfModule        `json:"vfModule,omitempty"`
	VolumeGroup     *inventory.VolumeGroup     `json:"volumeGroup,omitempty"`
	L3Network       *inventory.L3Network       `json:"l3Network,omitempty"`
	Configuration   *inventory.Configuration   `json:"configuration,omitempty"`
	InstanceGroup   *inventory.InstanceGroup   `json:"instanceGroup,omitempty"`
}

// ResolvePlan resolves the inputs of every step in plan. Steps are resolved
// concurrently, bounded by the resolver's concurrency; results are returned
// in plan order. The first failure cancels the remaining lookups and is
// returned as a *flow.StepError.
func (r *Resolver) ResolvePlan(ctx context.Context, plan flow.Plan) ([]StepInputs, error) {
	results := make([]StepInputs, plan.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, step := range plan.All() {
		g.Go(func() error {
			start := time.Now()
			in, err := r.resolveStep(gctx, step)
			if err != nil {
				r.emitter.Emit(emit.Event{
					RequestID: step.RequestID,
					Step:      i,
					FlowName:  step.FlowName(),
					Msg:       emit.MsgStepFailed,
					Meta:      map[string]any{"error": err.Error()},
				})
				return &flow.StepError{Index: i, MsoID: step.BuildingBlock.MsoID, Err: err}
			}

			in.Index = i
			results[i] = in
			r.emitter.Emit(emit.Event{
				RequestID: step.RequestID,
				Step:      i,
				FlowName:  step.FlowName(),
				Msg:       emit.MsgStepResolved,
				Meta:      map[string]any{"duration": time.Since(start)},
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ResolveOriginalPlan loads the original execution path of requestID and
// resolves it.
func (r *Resolver) ResolveOriginalPlan(ctx context.Context, requestID string) ([]StepInputs, error) {
	path, err := r.LoadOriginalFlowExecutionPath(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return r.ResolvePlan(ctx, flow.NewPlan(path))
}

func (r *Resolver) resolveStep(ctx context.Context, step flow.ExecuteBuildingBlock) (StepInputs, error) {
	ids := step.WorkflowResourceIDs
	in := StepInputs{Step: step}
	var err error

	if step.RequestDetails != nil {
		if in.CloudRegion, err = r.CloudRegion(ctx, step.RequestDetails.CloudConfiguration); err != nil {
			return in, fmt.Errorf("cloud region: %w", err)
		}
	}
	if ids.ServiceInstanceID != "" {
		if in.ServiceInstance, err = r.ServiceInstanceByID(ctx, ids.ServiceInstanceID); err != nil {
			return in, fmt.Errorf("service instance %s: %w", ids.ServiceInstanceID, err)
		}
	}
	if ids.VnfID != "" {
		if in.GenericVnf, err = r.GenericVnf(ctx, ids.VnfID); err != nil {
			return in, fmt.Errorf("generic vnf %s: %w", ids.VnfID, err)
		}
		if ids.VfModuleID != "" {
			if in.VfModule, err = r.VfModule(ctx, ids.VnfID, ids.VfModuleID); err != nil {
				return in, fmt.Errorf("vf-module %s: %w", ids.VfModuleID, err)
			}
		}
	}
	if ids.VolumeGroupID != "" {
		if in.CloudRegion != nil {
			in.VolumeGroup, err = r.VolumeGroup(ctx, in.CloudRegion.CloudOwner, in.CloudRegion.CloudRegionID, ids.VolumeGroupID)
		} else {
			in.VolumeGroup, err = r.VolumeGroupByID(ctx, ids.VolumeGroupID)
		}
		if err != nil {
			return in, fmt.Errorf("volume group %s: %w", ids.VolumeGroupID, err)
		}
	}
	if ids.NetworkID != "" {
		if in.L3Network, err = r.L3Network(ctx, ids.NetworkID); err != nil {
			return in, fmt.Errorf("l3-network %s: %w", ids.NetworkID, err)
		}
	}
	if ids.ConfigurationID != "" {
		if in.Configuration, err = r.Configuration(ctx, ids.ConfigurationID); err != nil {
			return in, fmt.Errorf("configuration %s: %w", ids.ConfigurationID, err)
		}
	}
	if ids.InstanceGroupID != "" {
		if in.InstanceGroup, err = r.InstanceGroup(ctx, ids.InstanceGroupID); err != nil {
			return in, fmt.Errorf("instance group %s: %w", ids.InstanceGroupID, err)
		}
	}
	return in, nil
}
