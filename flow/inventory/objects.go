package inventory

// RelationshipData is one key/value of a relationship.
type RelationshipData struct {
	Key   string `json:"relationship-key"`
	Value string `json:"relationship-value"`
}

// Relationship links an object to another inventory object.
type Relationship struct {
	RelatedTo         string             `json:"related-to"`
	RelationshipLabel string             `json:"relationship-label,omitempty"`
	RelatedLink       string             `json:"related-link,omitempty"`
	RelationshipData  []RelationshipData `json:"relationship-data,omitempty"`
}

// Value returns the relationship-value for key, or "".
func (r Relationship) Value(key string) string {
	for _, d := range r.RelationshipData {
		if d.Key == key {
			return d.Value
		}
	}
	return ""
}

// RelationshipList is the relationship-list of an object.
type RelationshipList struct {
	Relationship []Relationship `json:"relationship,omitempty"`
}

// ByType returns the relationships to objects of type relatedTo.
func (l *RelationshipList) ByType(relatedTo string) []Relationship {
	if l == nil {
		return nil
	}
	var out []Relationship
	for _, r := range l.Relationship {
		if r.RelatedTo == relatedTo {
			out = append(out, r)
		}
	}
	return out
}

type CloudRegion struct {
	CloudOwner         string            `json:"cloud-owner"`
	CloudRegionID      string            `json:"cloud-region-id"`
	CloudType          string            `json:"cloud-type,omitempty"`
	CloudRegionVersion string            `json:"cloud-region-version,omitempty"`
	ComplexName        string            `json:"complex-name,omitempty"`
	OwnerDefinedType   string            `json:"owner-defined-type,omitempty"`
	ResourceVersion    string            `json:"resource-version,omitempty"`
	RelationshipList   *RelationshipList `json:"relationship-list,omitempty"`
}

type Customer struct {
	GlobalCustomerID     string                `json:"global-customer-id"`
	SubscriberName       string                `json:"subscriber-name,omitempty"`
	SubscriberType       string                `json:"subscriber-type,omitempty"`
	ResourceVersion      string                `json:"resource-version,omitempty"`
	ServiceSubscriptions *ServiceSubscriptions `json:"service-subscriptions,omitempty"`
}

type ServiceSubscriptions struct {
	ServiceSubscription []ServiceSubscription `json:"service-subscription,omitempty"`
}

type ServiceSubscription struct {
	ServiceType      string            `json:"service-type"`
	TempUbSubAccount string            `json:"temp-ub-sub-account-id,omitempty"`
	ResourceVersion  string            `json:"resource-version,omitempty"`
	ServiceInstances *ServiceInstances `json:"service-instances,omitempty"`
	RelationshipList *RelationshipList `json:"relationship-list,omitempty"`
}

type ServiceInstance struct {
	ServiceInstanceID   string            `json:"service-instance-id"`
	ServiceInstanceName string            `json:"service-instance-name,omitempty"`
	ServiceType         string            `json:"service-type,omitempty"`
	ServiceRole         string            `json:"service-role,omitempty"`
	ModelInvariantID    string            `json:"model-invariant-id,omitempty"`
	ModelVersionID      string            `json:"model-version-id,omitempty"`
	OrchestrationStatus string            `json:"orchestration-status,omitempty"`
	ResourceVersion     string            `json:"resource-version,omitempty"`
	RelationshipList    *RelationshipList `json:"relationship-list,omitempty"`
}

type ServiceInstances struct {
	ServiceInstance []ServiceInstance `json:"service-instance,omitempty"`
}

type GenericVnf struct {
	VnfID                string            `json:"vnf-id"`
	VnfName              string            `json:"vnf-name,omitempty"`
	VnfType              string            `json:"vnf-type,omitempty"`
	ProvStatus           string            `json:"prov-status,omitempty"`
	OrchestrationStatus  string            `json:"orchestration-status,omitempty"`
	ModelInvariantID     string            `json:"model-invariant-id,omitempty"`
	ModelVersionID       string            `json:"model-version-id,omitempty"`
	ModelCustomizationID string            `json:"model-customization-id,omitempty"`
	ResourceVersion      string            `json:"resource-version,omitempty"`
	VfModules            *VfModules        `json:"vf-modules,omitempty"`
	RelationshipList     *RelationshipList `json:"relationship-list,omitempty"`
}

type GenericVnfs struct {
	GenericVnf []GenericVnf `json:"generic-vnf,omitempty"`
}

type VfModule struct {
	VfModuleID           string            `json:"vf-module-id"`
	VfModuleName         string            `json:"vf-module-name,omitempty"`
	IsBaseVfModule       bool              `json:"is-base-vf-module"`
	HeatStackID          string            `json:"heat-stack-id,omitempty"`
	OrchestrationStatus  string            `json:"orchestration-status,omitempty"`
	ModelInvariantID     string            `json:"model-invariant-id,omitempty"`
	ModelVersionID       string            `json:"model-version-id,omitempty"`
	ModelCustomizationID string            `json:"model-customization-id,omitempty"`
	ResourceVersion      string            `json:"resource-version,omitempty"`
	RelationshipList     *RelationshipList `json:"relationship-list,omitempty"`
}

type VfModules struct {
	VfModule []VfModule `json:"vf-module,omitempty"`
}

type L3Network struct {
	NetworkID            string            `json:"network-id"`
	NetworkName          string            `json:"network-name,omitempty"`
	NetworkType          string            `json:"network-type,omitempty"`
	NetworkRole          string            `json:"network-role,omitempty"`
	IsProviderNetwork    bool              `json:"is-provider-network"`
	OrchestrationStatus  string            `json:"orchestration-status,omitempty"`
	ModelInvariantID     string            `json:"model-invariant-id,omitempty"`
	ModelVersionID       string            `json:"model-version-id,omitempty"`
	ModelCustomizationID string            `json:"model-customization-id,omitempty"`
	ResourceVersion      string            `json:"resource-version,omitempty"`
	RelationshipList     *RelationshipList `json:"relationship-list,omitempty"`
}

type L3Networks struct {
	L3Network []L3Network `json:"l3-network,omitempty"`
}

type VolumeGroup struct {
	VolumeGroupID        string            `json:"volume-group-id"`
	VolumeGroupName      string            `json:"volume-group-name,omitempty"`
	HeatStackID          string            `json:"heat-stack-id,omitempty"`
	VnfType              string            `json:"vnf-type,omitempty"`
	OrchestrationStatus  string            `json:"orchestration-status,omitempty"`
	ModelCustomizationID string            `json:"vf-module-model-customization-id,omitempty"`
	ResourceVersion      string            `json:"resource-version,omitempty"`
	RelationshipList     *RelationshipList `json:"relationship-list,omitempty"`
}

type VolumeGroups struct {
	VolumeGroup []VolumeGroup `json:"volume-group,omitempty"`
}

type Configuration struct {
	ConfigurationID      string            `json:"configuration-id"`
	ConfigurationName    string            `json:"configuration-name,omitempty"`
	ConfigurationType    string            `json:"configuration-type,omitempty"`
	ConfigurationSubType string            `json:"configuration-sub-type,omitempty"`
	OrchestrationStatus  string            `json:"orchestration-status,omitempty"`
	OperationalStatus    string            `json:"operational-status,omitempty"`
	ModelInvariantID     string            `json:"model-invariant-id,omitempty"`
	ModelVersionID       string            `json:"model-version-id,omitempty"`
	ModelCustomizationID string            `json:"model-customization-id,omitempty"`
	ResourceVersion      string            `json:"resource-version,omitempty"`
	RelationshipList     *RelationshipList `json:"relationship-list,omitempty"`
}

type Configurations struct {
	Configuration []Configuration `json:"configuration,omitempty"`
}

type InstanceGroup struct {
	ID                string            `json:"id"`
	InstanceGroupName string            `json:"instance-group-name,omitempty"`
	InstanceGroupType string            `json:"instance-group-type,omitempty"`
	InstanceGroupRole string            `json:"instance-group-role,omitempty"`
	ModelInvariantID  string            `json:"model-invariant-id,omitempty"`
	ModelVersionID    string            `json:"model-version-id,omitempty"`
	ResourceVersion   string            `json:"resource-version,omitempty"`
	RelationshipList  *RelationshipList `json:"relationship-list,omitempty"`
}

type VpnBinding struct {
	VpnID              string            `json:"vpn-id"`
	VpnName            string            `json:"vpn-name,omitempty"`
	VpnType            string            `json:"vpn-type,omitempty"`
	RouteDistinguisher string            `json:"route-distinguisher,omitempty"`
	ResourceVersion    string            `json:"resource-version,omitempty"`
	RelationshipList   *RelationshipList `json:"relationship-list,omitempty"`
}
