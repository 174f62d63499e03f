package resolve

import (
	"context"
	"fmt"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/inventory"
)

// DefaultCloudOwner is used for cloud configurations that name no owner.
const DefaultCloudOwner = "CloudOwner"

// getObject reads the object at uri, returning nil when it does not exist.
func getObject[T any](ctx context.Context, c inventory.Client, uri inventory.URI) (*T, error) {
	var obj T
	found, err := c.Get(ctx, uri, &obj)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &obj, nil
}

// CloudRegion returns the region named by cloudConfig at depth two. A nil
// configuration or one without a region id yields nil.
func (r *Resolver) CloudRegion(ctx context.Context, cloudConfig *flow.CloudConfiguration) (*inventory.CloudRegion, error) {
	if cloudConfig == nil || cloudConfig.LcpCloudRegionID == "" {
		return nil, nil
	}
	owner := cloudConfig.CloudOwner
	if owner == "" {
		owner = DefaultCloudOwner
	}
	uri := inventory.NewResourceURI(inventory.TypeCloudRegion, owner, cloudConfig.LcpCloudRegionID).Depth(inventory.DepthTwo)
	return getObject[inventory.CloudRegion](ctx, r.inventory, uri)
}

func (r *Resolver) InstanceGroup(ctx context.Context, instanceGroupID string) (*inventory.InstanceGroup, error) {
	return getObject[inventory.InstanceGroup](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeInstanceGroup, instanceGroupID))
}

func (r *Resolver) Customer(ctx context.Context, globalSubscriberID string) (*inventory.Customer, error) {
	return getObject[inventory.Customer](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeCustomer, globalSubscriberID))
}

// ServiceSubscription returns nil without querying when either argument is
// blank.
func (r *Resolver) ServiceSubscription(ctx context.Context, globalSubscriberID, serviceType string) (*inventory.ServiceSubscription, error) {
	if globalSubscriberID == "" || serviceType == "" {
		return nil, nil
	}
	return getObject[inventory.ServiceSubscription](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeServiceSubscription, globalSubscriberID, serviceType))
}

// ServiceInstanceByID looks the instance up through /nodes, which needs no
// customer or subscription.
func (r *Resolver) ServiceInstanceByID(ctx context.Context, serviceInstanceID string) (*inventory.ServiceInstance, error) {
	uri := inventory.NewNodesResourceURI(inventory.TypeServiceInstance, serviceInstanceID).Depth(inventory.DepthTwo)
	return getObject[inventory.ServiceInstance](ctx, r.inventory, uri)
}

func (r *Resolver) ServiceInstanceByIDAndCustomer(ctx context.Context, globalCustomerID, serviceType, serviceInstanceID string) (*inventory.ServiceInstance, error) {
	uri := inventory.NewResourceURI(inventory.TypeServiceInstance, globalCustomerID, serviceType, serviceInstanceID).
		Depth(inventory.DepthTwo)
	return getObject[inventory.ServiceInstance](ctx, r.inventory, uri)
}

func (r *Resolver) GenericVnf(ctx context.Context, vnfID string) (*inventory.GenericVnf, error) {
	uri := inventory.NewResourceURI(inventory.TypeGenericVnf, vnfID).Depth(inventory.DepthOne)
	return getObject[inventory.GenericVnf](ctx, r.inventory, uri)
}

func (r *Resolver) Configuration(ctx context.Context, configurationID string) (*inventory.Configuration, error) {
	uri := inventory.NewResourceURI(inventory.TypeConfiguration, configurationID).Depth(inventory.DepthOne)
	return getObject[inventory.Configuration](ctx, r.inventory, uri)
}

func (r *Resolver) VfModule(ctx context.Context, vnfID, vfModuleID string) (*inventory.VfModule, error) {
	return getObject[inventory.VfModule](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeVfModule, vnfID, vfModuleID))
}

func (r *Resolver) L3Network(ctx context.Context, networkID string) (*inventory.L3Network, error) {
	return getObject[inventory.L3Network](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeL3Network, networkID))
}

func (r *Resolver) VolumeGroup(ctx context.Context, cloudOwner, cloudRegionID, volumeGroupID string) (*inventory.VolumeGroup, error) {
	return getObject[inventory.VolumeGroup](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeVolumeGroup, cloudOwner, cloudRegionID, volumeGroupID))
}

// VolumeGroupByID reads a volume group through the global /nodes index when
// its cloud region is unknown
func (r *Resolver) VolumeGroupByID(ctx context.Context, volumeGroupID string) (*inventory.VolumeGroup, error) {
	return getObject[inventory.VolumeGroup](ctx, r.inventory,
		inventory.NewNodesResourceURI(inventory.TypeVolumeGroup, volumeGroupID))
}

func (r *Resolver) VpnBinding(ctx context.Context, vpnBindingID string) (*inventory.VpnBinding, error) {
	return getObject[inventory.VpnBinding](ctx, r.inventory,
		inventory.NewResourceURI(inventory.TypeVpnBinding, vpnBindingID))
}

// ResourceDepthOne reads uri at depth one into a generic document. uri is
// not modified.
func (r *Resolver) ResourceDepthOne(ctx context.Context, uri inventory.URI) (map[string]any, error) {
	return r.resourceAt(ctx, uri, inventory.DepthOne)
}

// ResourceDepthTwo reads uri at depth two into a generic document. uri is
// not modified.
func (r *Resolver) ResourceDepthTwo(ctx context.Context, uri inventory.URI) (map[string]any, error) {
	return r.resourceAt(ctx, uri, inventory.DepthTwo)
}

func (r *Resolver) resourceAt(ctx context.Context, uri inventory.URI, depth inventory.Depth) (map[string]any, error) {
	doc := map[string]any{}
	found, err := r.inventory.Get(ctx, uri.Depth(depth), &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri.Path(), err)
	}
	if !found {
		return nil, nil
	}
	return doc, nil
}

// VpnBindingFromNetwork follows the network's vpn-binding relationship. A
// network without one yields nil.
func (r *Resolver) VpnBindingFromNetwork(ctx context.Context, network *inventory.L3Network) (*inventory.VpnBinding, error) {
	if network == nil {
		return nil, nil
	}
	for _, rel := range network.RelationshipList.ByType("vpn-binding") {
		if id := rel.Value("vpn-binding.vpn-id"); id != "" {
			return r.VpnBinding(ctx, id)
		}
	}
	return nil, nil
}
