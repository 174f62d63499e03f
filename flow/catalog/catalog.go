// Package catalog reads design-time service models and customizations from
// the catalog DB adapter.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/dshills/bbflow/flow/rest"
)

// ErrNotFound is returned when the catalog has no matching entry.
var ErrNotFound = errors.New("catalog entry not found")

// Client looks up catalog entries. Every method returns ErrNotFound when
// nothing matches.
type Client interface {
	ServiceByModelUUID(ctx context.Context, modelUUID string) (*Service, error)
	ServiceByModelVersionAndInvariantUUID(ctx context.Context, modelVersion, modelInvariantUUID string) (*Service, error)
	VnfcInstanceGroupsByVnfResourceCust(ctx context.Context, modelCustomizationUUID string) ([]VnfcInstanceGroupCustomization, error)
	InstanceGroupByModelUUID(ctx context.Context, modelUUID string) (*InstanceGroup, error)
	CollectionResourceInstanceGroupCustomizations(ctx context.Context, modelCustomizationUUID string) ([]CollectionResourceInstanceGroupCustomization, error)
	VfModuleCustomization(ctx context.Context, modelCustomizationUUID string) (*VfModuleCustomization, error)
	CvnfcConfigurationCustomization(ctx context.Context, serviceModelUUID, vnfCustomizationUUID, vfModuleCustomizationUUID, cvnfcCustomizationUUID string) (*CvnfcConfigurationCustomization, error)
}

// HTTPClient is a Client backed by the catalog DB adapter's REST API.
type HTTPClient struct {
	rest *rest.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient wraps a REST client whose base URL points at the adapter's
// "/ecomp/mso/catalog/v1" root.
func NewHTTPClient(rc *rest.Client) *HTTPClient {
	return &HTTPClient{rest: rc}
}

func (c *HTTPClient) ServiceByModelUUID(ctx context.Context, modelUUID string) (*Service, error) {
	var svc Service
	if err := c.getOne(ctx, "/service/"+url.PathEscape(modelUUID), nil, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *HTTPClient) ServiceByModelVersionAndInvariantUUID(ctx context.Context, modelVersion, modelInvariantUUID string) (*Service, error) {
	query := url.Values{
		"modelVersion":       {modelVersion},
		"modelInvariantUUID": {modelInvariantUUID},
	}
	var svc Service
	if err := c.getOne(ctx, "/service/search/findFirstByModelVersionAndModelInvariantUUID", query, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *HTTPClient) VnfcInstanceGroupsByVnfResourceCust(ctx context.Context, modelCustomizationUUID string) ([]VnfcInstanceGroupCustomization, error) {
	query := url.Values{"modelCustomizationUUID": {modelCustomizationUUID}}
	return getEmbedded[VnfcInstanceGroupCustomization](ctx, c.rest,
		"/vnfcInstanceGroupCustomization/search/findByVnfResourceCust", query, "vnfcInstanceGroupCustomization")
}

func (c *HTTPClient) InstanceGroupByModelUUID(ctx context.Context, modelUUID string) (*InstanceGroup, error) {
	var ig InstanceGroup
	query := url.Values{"modelUUID": {modelUUID}}
	if err := c.getOne(ctx, "/instanceGroup/search/findByModelUUID", query, &ig); err != nil {
		return nil, err
	}
	return &ig, nil
}

func (c *HTTPClient) CollectionResourceInstanceGroupCustomizations(ctx context.Context, modelCustomizationUUID string) ([]CollectionResourceInstanceGroupCustomization, error) {
	query := url.Values{"modelCustomizationUUID": {modelCustomizationUUID}}
	return getEmbedded[CollectionResourceInstanceGroupCustomization](ctx, c.rest,
		"/collectionResourceInstanceGroupCustomization/search/findByModelCustomizationUUID", query,
		"collectionResourceInstanceGroupCustomization")
}

func (c *HTTPClient) VfModuleCustomization(ctx context.Context, modelCustomizationUUID string) (*VfModuleCustomization, error) {
	var vfmc VfModuleCustomization
	query := url.Values{"MODEL_CUSTOMIZATION_UUID": {modelCustomizationUUID}}
	if err := c.getOne(ctx, "/vfModuleCustomization/search/findFirstByModelCustomizationUUIDOrderByCreatedDesc", query, &vfmc); err != nil {
		return nil, err
	}
	return &vfmc, nil
}

func (c *HTTPClient) CvnfcConfigurationCustomization(ctx context.Context, serviceModelUUID, vnfCustomizationUUID, vfModuleCustomizationUUID, cvnfcCustomizationUUID string) (*CvnfcConfigurationCustomization, error) {
	query := url.Values{
		"serviceModelUUID":          {serviceModelUUID},
		"vnfCustomizationUUID":      {vnfCustomizationUUID},
		"vfModuleCustomizationUUID": {vfModuleCustomizationUUID},
		"cvnfcCustomizationUUID":    {cvnfcCustomizationUUID},
	}
	var cc CvnfcConfigurationCustomization
	if err := c.getOne(ctx, "/cvnfcConfigurationCustomization/search/findOneByIds", query, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *HTTPClient) getOne(ctx context.Context, path string, query url.Values, out any) error {
	err := c.rest.Get(ctx, path, query, out)
	if rest.IsNotFound(err) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("catalog get %s: %w", path, err)
	}
	return nil
}

// getEmbedded decodes a Spring Data REST collection. Entries live under
// "_embedded.<name>"; an empty collection is reported as ErrNotFound.
func getEmbedded[T any](ctx context.Context, rc *rest.Client, path string, query url.Values, name string) ([]T, error) {
	var raw json.RawMessage
	err := rc.Get(ctx, path, query, &raw)
	if rest.IsNotFound(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog get %s: %w", path, err)
	}

	list := gjson.GetBytes(raw, "_embedded."+name)
	if !list.IsArray() || len(list.Array()) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	var items []T
	if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return items, nil
}
