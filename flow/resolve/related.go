package resolve

import (
	"context"

	"github.com/dshills/bbflow/flow/inventory"
)

// Subscriber identifies the customer and subscription a service instance
// lives under.
type Subscriber struct {
	GlobalCustomerID string
	ServiceType      string
}

// single returns the only element of items. No items yields nil; more than
// one yields the error built by multiple.
func single[T any](items []T, multiple func(n int) error) (*T, error) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	default:
		return nil, multiple(len(items))
	}
}

// ServiceInstanceByName finds a service instance by name within a customer's
// subscription.
func (r *Resolver) ServiceInstanceByName(ctx context.Context, name string, sub Subscriber) (*inventory.ServiceInstance, error) {
	items, err := r.serviceInstancesByName(ctx, sub.GlobalCustomerID, sub.ServiceType, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		r.logger.Debug("No Service Instance matched by name")
	}
	return single(items, func(n int) error {
		return multipleFound("service-instance", n, "Multiple Service Instances Returned")
	})
}

// OptionalServiceInstanceByName is ServiceInstanceByName with the customer
// given by its parts and a descriptive error for duplicate names.
func (r *Resolver) OptionalServiceInstanceByName(ctx context.Context, globalCustomerID, serviceType, name string) (*inventory.ServiceInstance, error) {
	items, err := r.serviceInstancesByName(ctx, globalCustomerID, serviceType, name)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("service-instance", n,
			"Multiple service instances found for customer-id: %s, service-type: %s and service-instance-name: %s.",
			globalCustomerID, serviceType, name)
	})
}

func (r *Resolver) serviceInstancesByName(ctx context.Context, globalCustomerID, serviceType, name string) ([]inventory.ServiceInstance, error) {
	uri := inventory.NewPluralURI(inventory.PluralServiceInstances, globalCustomerID, serviceType).
		QueryParam("service-instance-name", name).
		Depth(inventory.DepthTwo)
	items, _, err := inventory.GetList[inventory.ServiceInstance](ctx, r.inventory, uri, inventory.PluralServiceInstances)
	return items, err
}

// relatedList reads the objects of plural related to parent, filtered by the
// optional name query parameter.
func relatedList[T any](ctx context.Context, c inventory.Client, parent inventory.URI, plural inventory.ObjectPlural, nameKey, name string) ([]T, error) {
	uri := inventory.NewRelatedURI(parent, plural)
	if nameKey != "" {
		uri = uri.QueryParam(nameKey, name)
	}
	items, _, err := inventory.GetList[T](ctx, c, uri, plural)
	return items, err
}

func serviceInstanceURI(serviceInstanceID string) inventory.URI {
	return inventory.NewNodesResourceURI(inventory.TypeServiceInstance, serviceInstanceID)
}

// RelatedNetworkByNameFromServiceInstance finds the l3-network named
// networkName among those related to a service instance. None yields nil.
func (r *Resolver) RelatedNetworkByNameFromServiceInstance(ctx context.Context, serviceInstanceID, networkName string) (*inventory.L3Network, error) {
	items, err := relatedList[inventory.L3Network](ctx, r.inventory, serviceInstanceURI(serviceInstanceID),
		inventory.PluralL3Networks, "network-name", networkName)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("l3-network", n,
			"Multiple networks found for service-instance-id: %s and network-name: %s.", serviceInstanceID, networkName)
	})
}

// RelatedVnfByNameFromServiceInstance finds the generic vnf named vnfName
// among those related to a service instance. None yields nil.
func (r *Resolver) RelatedVnfByNameFromServiceInstance(ctx context.Context, serviceInstanceID, vnfName string) (*inventory.GenericVnf, error) {
	items, err := relatedList[inventory.GenericVnf](ctx, r.inventory, serviceInstanceURI(serviceInstanceID),
		inventory.PluralGenericVnfs, "vnf-name", vnfName)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("generic-vnf", n,
			"Multiple vnfs found for service-instance-id: %s and vnf-name: %s.", serviceInstanceID, vnfName)
	})
}

// RelatedConfigurationByNameFromServiceInstance finds the configuration named
// configurationName among those related to a service instance. None yields nil.
func (r *Resolver) RelatedConfigurationByNameFromServiceInstance(ctx context.Context, serviceInstanceID, configurationName string) (*inventory.Configuration, error) {
	items, err := relatedList[inventory.Configuration](ctx, r.inventory, serviceInstanceURI(serviceInstanceID),
		inventory.PluralConfigurations, "configuration-name", configurationName)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("configuration", n,
			"Multiple configurations found for service-instance-id: %s and configuration-name: %s.",
			serviceInstanceID, configurationName)
	})
}

// RelatedVolumeGroupByNameFromVnf finds the volume group named
// volumeGroupName among those related to a generic vnf. None yields nil.
func (r *Resolver) RelatedVolumeGroupByNameFromVnf(ctx context.Context, vnfID, volumeGroupName string) (*inventory.VolumeGroup, error) {
	parent := inventory.NewResourceURI(inventory.TypeGenericVnf, vnfID)
	items, err := relatedList[inventory.VolumeGroup](ctx, r.inventory, parent,
		inventory.PluralVolumeGroups, "volume-group-name", volumeGroupName)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("volume-group", n,
			"Multiple volume-groups found for vnf-id: %s and volume-group-name: %s.", vnfID, volumeGroupName)
	})
}

// RelatedVolumeGroupByNameFromVfModule finds the volume group named
// volumeGroupName among those related to a vf-module. None yields nil.
func (r *Resolver) RelatedVolumeGroupByNameFromVfModule(ctx context.Context, vnfID, vfModuleID, volumeGroupName string) (*inventory.VolumeGroup, error) {
	parent := inventory.NewResourceURI(inventory.TypeVfModule, vnfID, vfModuleID)
	items, err := relatedList[inventory.VolumeGroup](ctx, r.inventory, parent,
		inventory.PluralVolumeGroups, "volume-group-name", volumeGroupName)
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		// sic
		return multipleFound("volume-group", n,
			"Multiple voulme-groups found for vnf-id: %s, vf-module-id: %s and volume-group-name: %s.",
			vnfID, vfModuleID, volumeGroupName)
	})
}

// RelatedVolumeGroupFromVfModule returns the volume group attached to a vf-module.
func (r *Resolver) RelatedVolumeGroupFromVfModule(ctx context.Context, vnfID, vfModuleID string) (*inventory.VolumeGroup, error) {
	parent := inventory.NewResourceURI(inventory.TypeVfModule, vnfID, vfModuleID)
	items, err := relatedList[inventory.VolumeGroup](ctx, r.inventory, parent, inventory.PluralVolumeGroups, "", "")
	if err != nil {
		return nil, err
	}
	return single(items, func(n int) error {
		return multipleFound("volume-group", n,
			"Multiple volume-groups found for vnf-id: %s and vf-module-id: %s.", vnfID, vfModuleID)
	})
}

// RelatedServiceInstanceFromInstanceGroup returns the one service instance an
// instance group belongs to. Unlike the other related lookups, finding none
// is an error.
func (r *Resolver) RelatedServiceInstanceFromInstanceGroup(ctx context.Context, instanceGroupID string) (*inventory.ServiceInstance, error) {
	parent := inventory.NewResourceURI(inventory.TypeInstanceGroup, instanceGroupID)
	items, err := relatedList[inventory.ServiceInstance](ctx, r.inventory, parent, inventory.PluralServiceInstances, "", "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoServiceInstanceFound
	}
	return single(items, func(n int) error {
		return multipleFound("service-instance", n,
			"Multiple service instances found for instance-group-id: %s.", instanceGroupID)
	})
}

// ExistsVfModuleGloballyByName reports whether any vf-module is named name.
func (r *Resolver) ExistsVfModuleGloballyByName(ctx context.Context, name string) (bool, error) {
	return r.inventory.Exists(ctx, inventory.NewNodesURI(inventory.PluralVfModules).QueryParam("vf-module-name", name))
}

// ExistsConfigurationGloballyByName reports whether any configuration is
// named name.
func (r *Resolver) ExistsConfigurationGloballyByName(ctx context.Context, name string) (bool, error) {
	return r.inventory.Exists(ctx, inventory.NewPluralURI(inventory.PluralConfigurations).QueryParam("configuration-name", name))
}

// ExistsNetworksGloballyByName reports whether any l3-network is named name.
func (r *Resolver) ExistsNetworksGloballyByName(ctx context.Context, name string) (bool, error) {
	return r.inventory.Exists(ctx, inventory.NewPluralURI(inventory.PluralL3Networks).QueryParam("network-name", name))
}

// ExistsVolumeGroupGloballyByName reports whether any volume group is named
// name.
func (r *Resolver) ExistsVolumeGroupGloballyByName(ctx context.Context, name string) (bool, error) {
	return r.inventory.Exists(ctx, inventory.NewNodesURI(inventory.PluralVolumeGroups).QueryParam("volume-group-name", name))
}

// ServiceInstancesGloballyByName returns every service instance with name,
// or nil when the inventory has none.
func (r *Resolver) ServiceInstancesGloballyByName(ctx context.Context, name string) ([]inventory.ServiceInstance, error) {
	uri := inventory.NewNodesURI(inventory.PluralServiceInstances).QueryParam("service-instance-name", name)
	items, found, err := inventory.GetList[inventory.ServiceInstance](ctx, r.inventory, uri, inventory.PluralServiceInstances)
	if err != nil || !found {
		return nil, err
	}
	return items, nil
}

// VnfsGloballyByName returns every generic vnf with name, or nil when the
// inventory has none.
func (r *Resolver) VnfsGloballyByName(ctx context.Context, name string) ([]inventory.GenericVnf, error) {
	uri := inventory.NewPluralURI(inventory.PluralGenericVnfs).QueryParam("vnf-name", name)
	items, found, err := inventory.GetList[inventory.GenericVnf](ctx, r.inventory, uri, inventory.PluralGenericVnfs)
	if err != nil || !found {
		return nil, err
	}
	return items, nil
}
