// Package inventory addresses and reads objects in the graph inventory
// (AAI) service.
package inventory

import (
	"fmt"
	"strings"
)

// ObjectType is a singular inventory object and the URI template locating
// one instance of it. Template placeholders are filled in order.
type ObjectType struct {
	Name     string
	template string
}

// ObjectPlural is a collection of inventory objects. Name is also the JSON
// key the collection's list is returned under.
type ObjectPlural struct {
	Name     string
	template string
	// nodes is the path used for global /nodes queries.
	nodes string
}

const (
	cloudRegionPath  = "/cloud-infrastructure/cloud-regions/cloud-region/{cloud-owner}/{cloud-region-id}"
	customerPath     = "/business/customers/customer/{global-customer-id}"
	subscriptionPath = customerPath + "/service-subscriptions/service-subscription/{service-type}"
	genericVnfPath   = "/network/generic-vnfs/generic-vnf/{vnf-id}"
)

// Singular object types.
var (
	TypeCloudRegion         = ObjectType{"cloud-region", cloudRegionPath}
	TypeCustomer            = ObjectType{"customer", customerPath}
	TypeServiceSubscription = ObjectType{"service-subscription", subscriptionPath}
	TypeServiceInstance     = ObjectType{"service-instance", subscriptionPath + "/service-instances/service-instance/{service-instance-id}"}
	TypeGenericVnf          = ObjectType{"generic-vnf", genericVnfPath}
	TypeVfModule            = ObjectType{"vf-module", genericVnfPath + "/vf-modules/vf-module/{vf-module-id}"}
	TypeL3Network           = ObjectType{"l3-network", "/network/l3-networks/l3-network/{network-id}"}
	TypeVolumeGroup         = ObjectType{"volume-group", cloudRegionPath + "/volume-groups/volume-group/{volume-group-id}"}
	TypeConfiguration       = ObjectType{"configuration", "/network/configurations/configuration/{configuration-id}"}
	TypeInstanceGroup       = ObjectType{"instance-group", "/network/instance-groups/instance-group/{id}"}
	TypeVpnBinding          = ObjectType{"vpn-binding", "/network/vpn-bindings/vpn-binding/{vpn-id}"}
)

// Plural object types.
var (
	PluralServiceInstances = ObjectPlural{"service-instance", subscriptionPath + "/service-instances", "/nodes/service-instances"}
	PluralGenericVnfs      = ObjectPlural{"generic-vnf", "/network/generic-vnfs", "/nodes/generic-vnfs"}
	PluralL3Networks       = ObjectPlural{"l3-network", "/network/l3-networks", "/nodes/l3-networks"}
	PluralVolumeGroups     = ObjectPlural{"volume-group", cloudRegionPath + "/volume-groups", "/nodes/volume-groups"}
	PluralConfigurations   = ObjectPlural{"configuration", "/network/configurations", "/nodes/configurations"}
	PluralVfModules        = ObjectPlural{"vf-module", genericVnfPath + "/vf-modules", "/nodes/vf-modules"}
)

// relatedSegment is the path element of a related-to traversal, e.g.
// "l3-networks".
func (p ObjectPlural) relatedSegment() string {
	return strings.TrimPrefix(p.nodes, "/nodes/")
}

// fill replaces the template's placeholders with the escaped values. It
// panics when the number of values does not match, as a malformed template
// call is a programming error.
func fill(name, template string, values []string) string {
	var b strings.Builder
	rest := template
	used := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		if used >= len(values) {
			panic(fmt.Sprintf("inventory: %s needs more than %d values", name, len(values)))
		}
		b.WriteString(escapeSegment(values[used]))
		used++
		rest = rest[open+end+1:]
	}
	if used != len(values) {
		panic(fmt.Sprintf("inventory: %s takes %d values, got %d", name, used, len(values)))
	}
	return b.String()
}
