package catalog

// Service is a service model.
type Service struct {
	ModelUUID          string `json:"modelUUID"`
	ModelInvariantUUID string `json:"modelInvariantUUID,omitempty"`
	ModelVersion       string `json:"modelVersion,omitempty"`
	ModelName          string `json:"modelName,omitempty"`
	ServiceType        string `json:"serviceType,omitempty"`
	ServiceRole        string `json:"serviceRole,omitempty"`
	Environment        string `json:"environmentContext,omitempty"`
	WorkloadContext    string `json:"workloadContext,omitempty"`
	Category           string `json:"category,omitempty"`
	Description        string `json:"description,omitempty"`
}

// InstanceGroup is an instance group model.
type InstanceGroup struct {
	ModelUUID          string `json:"modelUUID"`
	ModelName          string `json:"modelName,omitempty"`
	ModelInvariantUUID string `json:"modelInvariantUUID,omitempty"`
	ModelVersion       string `json:"modelVersion,omitempty"`
	Role               string `json:"role,omitempty"`
	ObjectType         string `json:"objectType,omitempty"`
	Type               string `json:"type,omitempty"`
}

type VnfcInstanceGroupCustomization struct {
	ID                  int            `json:"id,omitempty"`
	VnfResourceCustUUID string         `json:"vnfResourceCustomizationUUID,omitempty"`
	Function            string         `json:"function,omitempty"`
	Description         string         `json:"description,omitempty"`
	InstanceGroup       *InstanceGroup `json:"instanceGroup,omitempty"`
}

type CollectionResourceInstanceGroupCustomization struct {
	ModelCustomizationUUID      string         `json:"modelCustomizationUUID"`
	Function                    string         `json:"function,omitempty"`
	Description                 string         `json:"description,omitempty"`
	SubInterfaceNetworkQuantity int            `json:"subInterfaceNetworkQuantity,omitempty"`
	InstanceGroup               *InstanceGroup `json:"instanceGroup,omitempty"`
}

type VfModuleCustomization struct {
	ModelCustomizationUUID string `json:"modelCustomizationUUID"`
	Label                  string `json:"label,omitempty"`
	InitialCount           int    `json:"initialCount,omitempty"`
	MinInstances           int    `json:"minInstances,omitempty"`
	MaxInstances           int    `json:"maxInstances,omitempty"`
	AvailabilityZoneCount  int    `json:"availabilityZoneCount,omitempty"`
	IsBase                 bool   `json:"isBase,omitempty"`
}

type CvnfcConfigurationCustomization struct {
	ModelCustomizationUUID string `json:"modelCustomizationUUID"`
	ModelInstanceName      string `json:"modelInstanceName,omitempty"`
	ConfigurationFunction  string `json:"configurationFunction,omitempty"`
	ConfigurationRole      string `json:"configurationRole,omitempty"`
	ConfigurationType      string `json:"configurationType,omitempty"`
	PolicyName             string `json:"policyName,omitempty"`
}
