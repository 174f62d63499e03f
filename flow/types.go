// Package flow models the ordered building-block execution path persisted
// for an orchestration request and replays it after a crash or partial
// failure.
//
// A path is stored as a JSON array of ExecuteBuildingBlock values under the
// processing-data name FlowExecutionPathKey. Replayer loads it back, either
// for the request itself or for the original request a retry points to, and
// Plan exposes it as an immutable sequence that can be resumed part way.
package flow

// BuildingBlock identifies one atomic orchestration step.
type BuildingBlock struct {
	MsoID          string `json:"mso-id"`
	BpmnFlowName   string `json:"bpmn-flow-name"`
	Key            string `json:"key"`
	IsVirtualLink  bool   `json:"is-virtual-link"`
	VirtualLinkKey string `json:"virtual-link-key,omitempty"`
}

// WorkflowResourceIDs holds the inventory identifiers a step operates on.
// An empty string means the identifier is absent, whether it was persisted
// as "" or null.
type WorkflowResourceIDs struct {
	ServiceInstanceID   string `json:"serviceInstanceId,omitempty"`
	VnfID               string `json:"vnfId,omitempty"`
	NetworkID           string `json:"networkId,omitempty"`
	VolumeGroupID       string `json:"volumeGroupId,omitempty"`
	VfModuleID          string `json:"vfModuleId,omitempty"`
	NetworkCollectionID string `json:"networkCollectionId,omitempty"`
	ConfigurationID     string `json:"configurationId,omitempty"`
	InstanceGroupID     string `json:"instanceGroupId,omitempty"`
}

// ModelInfo describes the design-time model a step instantiates.
type ModelInfo struct {
	ModelCustomizationName string `json:"modelCustomizationName,omitempty"`
	ModelInvariantID       string `json:"modelInvariantId,omitempty"`
	ModelType              string `json:"modelType,omitempty"`
	ModelID                string `json:"modelId,omitempty"`
	ModelName              string `json:"modelName,omitempty"`
	ModelVersion           string `json:"modelVersion,omitempty"`
	ModelCustomizationUUID string `json:"modelCustomizationUuid,omitempty"`
	ModelVersionID         string `json:"modelVersionId,omitempty"`
	ModelCustomizationID   string `json:"modelCustomizationId,omitempty"`
	ModelUUID              string `json:"modelUuid,omitempty"`
	ModelInvariantUUID     string `json:"modelInvariantUuid,omitempty"`
	ModelInstanceName      string `json:"modelInstanceName,omitempty"`
}

// RequestInfo carries caller supplied request metadata.
type RequestInfo struct {
	Source           string `json:"source,omitempty"`
	SuppressRollback bool   `json:"suppressRollback"`
	RequestorID      string `json:"requestorId,omitempty"`
	InstanceName     string `json:"instanceName,omitempty"`
	ProductFamilyID  string `json:"productFamilyId,omitempty"`
}

// CloudConfiguration selects the cloud region and tenant a step targets.
type CloudConfiguration struct {
	TenantID         string `json:"tenantId,omitempty"`
	CloudOwner       string `json:"cloudOwner,omitempty"`
	LcpCloudRegionID string `json:"lcpCloudRegionId,omitempty"`
}

// SubscriberInfo identifies the customer owning the service.
type SubscriberInfo struct {
	GlobalSubscriberID string `json:"globalSubscriberId,omitempty"`
	SubscriberName     string `json:"subscriberName,omitempty"`
}

// RequestDetails is the northbound request payload attached to each step.
type RequestDetails struct {
	ModelInfo          *ModelInfo          `json:"modelInfo,omitempty"`
	RequestInfo        *RequestInfo        `json:"requestInfo,omitempty"`
	CloudConfiguration *CloudConfiguration `json:"cloudConfiguration,omitempty"`
	SubscriberInfo     *SubscriberInfo     `json:"subscriberInfo,omitempty"`
	RequestParameters  map[string]any      `json:"requestParameters,omitempty"`
}

// ConfigurationResourceKeys identifies the customizations a configuration
// step applies to.
type ConfigurationResourceKeys struct {
	VfModuleCustomizationUUID    string `json:"vfModuleCustomizationUUID,omitempty"`
	VnfResourceCustomizationUUID string `json:"vnfResourceCustomizationUUID,omitempty"`
	CvnfcCustomizationUUID       string `json:"cvnfcCustomizationUUID,omitempty"`
	VnfcName                     string `json:"vnfcName,omitempty"`
}

// ExecuteBuildingBlock is one step of an execution path.
type ExecuteBuildingBlock struct {
	BuildingBlock             BuildingBlock              `json:"buildingBlock"`
	RequestID                 string                     `json:"requestId"`
	APIVersion                string                     `json:"apiVersion,omitempty"`
	ResourceID                string                     `json:"resourceId,omitempty"`
	RequestAction             string                     `json:"requestAction,omitempty"`
	VnfType                   string                     `json:"vnfType,omitempty"`
	ALaCarte                  bool                       `json:"aLaCarte"`
	Homing                    bool                       `json:"homing"`
	WorkflowResourceIDs       WorkflowResourceIDs        `json:"workflowResourceIds"`
	RequestDetails            *RequestDetails            `json:"requestDetails,omitempty"`
	ConfigurationResourceKeys *ConfigurationResourceKeys `json:"configurationResourceKeys"`
}

// FlowName returns the step's flow name.
func (e ExecuteBuildingBlock) FlowName() string {
	return e.BuildingBlock.BpmnFlowName
}

// ExecutionPath is the ordered list of steps persisted for a request.
type ExecutionPath []ExecuteBuildingBlock

// Names returns the flow names of the path in order.
func (p ExecutionPath) Names() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.BuildingBlock.BpmnFlowName
	}
	return names
}

// Validate checks that every step names its flow.
func (p ExecutionPath) Validate() error {
	for i, step := range p {
		if step.BuildingBlock.BpmnFlowName == "" {
			return &StepError{Index: i, MsoID: step.BuildingBlock.MsoID, Err: ErrMissingFlowName}
		}
	}
	return nil
}
