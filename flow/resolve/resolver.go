// Package resolve gathers the inventory objects and catalog templates a
// building block needs before it runs.
//
// Lookups are null tolerant: an object that does not exist is returned as
// nil with a nil error. Lookups by name distinguish "nothing found" (nil)
// from "more than one found" (*MultipleObjectsFoundError), since names are
// not unique in the inventory.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/catalog"
	"github.com/dshills/bbflow/flow/emit"
	"github.com/dshills/bbflow/flow/inventory"
	"github.com/dshills/bbflow/flow/store"
)

const defaultConcurrency = 4

// Resolver looks up building block inputs.
type Resolver struct {
	inventory   inventory.Client
	catalog     catalog.Client
	store       store.Store
	replayer    *flow.Replayer
	emitter     emit.Emitter
	logger      *slog.Logger
	concurrency int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEmitter sets the emitter receiving step events from ResolvePlan.
func WithEmitter(e emit.Emitter) Option {
	return func(r *Resolver) {
		if e != nil {
			r.emitter = e
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency bounds the number of steps ResolvePlan resolves at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithReplayer sets the replayer used by LoadOriginalFlowExecutionPath.
// By default a replayer over the resolver's store is used.
func WithReplayer(rp *flow.Replayer) Option {
	return func(r *Resolver) {
		if rp != nil {
			r.replayer = rp
		}
	}
}

// New creates a Resolver.
func New(inv inventory.Client, cat catalog.Client, st store.Store, opts ...Option) *Resolver {
	r := &Resolver{
		inventory:   inv,
		catalog:     cat,
		store:       st,
		emitter:     emit.NewNullEmitter(),
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.replayer == nil {
		r.replayer = flow.NewReplayer(st, flow.WithEmitter(r.emitter))
	}
	return r
}

// catalogResult turns catalog.ErrNotFound into a nil result.
func catalogResult[T any](v T, err error) (T, error) {
	var zero T
	if errors.Is(err, catalog.ErrNotFound) {
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

// CatalogServiceByModelUUID returns the catalog service model, or nil when
// the catalog has none
func (r *Resolver) CatalogServiceByModelUUID(ctx context.Context, modelUUID string) (*catalog.Service, error) {
	return catalogResult(r.catalog.ServiceByModelUUID(ctx, modelUUID))
}

// CatalogServiceByModelVersionAndModelInvariantUUID looks a service model up
// by version within its invariant UUID. A missing model is nil
func (r *Resolver) CatalogServiceByModelVersionAndModelInvariantUUID(ctx context.Context, modelVersion, modelInvariantUUID string) (*catalog.Service, error) {
	return catalogResult(r.catalog.ServiceByModelVersionAndInvariantUUID(ctx, modelVersion, modelInvariantUUID))
}

// VnfcInstanceGroups returns the VNFC instance group customizations of a
// vnf resource customization
func (r *Resolver) VnfcInstanceGroups(ctx context.Context, vnfModelCustomizationUUID string) ([]catalog.VnfcInstanceGroupCustomization, error) {
	return catalogResult(r.catalog.VnfcInstanceGroupsByVnfResourceCust(ctx, vnfModelCustomizationUUID))
}

// CatalogInstanceGroup returns the instance group model, or nil
func (r *Resolver) CatalogInstanceGroup(ctx context.Context, modelUUID string) (*catalog.InstanceGroup, error) {
	return catalogResult(r.catalog.InstanceGroupByModelUUID(ctx, modelUUID))
}

// CollectionResourceInstanceGroupCustomization returns the instance group
// customizations of a collection resource customization
func (r *Resolver) CollectionResourceInstanceGroupCustomization(ctx context.Context, modelCustomizationUUID string) ([]catalog.CollectionResourceInstanceGroupCustomization, error) {
	return catalogResult(r.catalog.CollectionResourceInstanceGroupCustomizations(ctx, modelCustomizationUUID))
}

// VfModuleCustomization returns the newest vf-module customization with
// modelCustomizationUUID, or nil
func (r *Resolver) VfModuleCustomization(ctx context.Context, modelCustomizationUUID string) (*catalog.VfModuleCustomization, error) {
	return catalogResult(r.catalog.VfModuleCustomization(ctx, modelCustomizationUUID))
}

// CvnfcConfigurationCustomization returns the configuration customization a
// CVNFC carries within a vf-module of a vnf of a service model, or nil
func (r *Resolver) CvnfcConfigurationCustomization(ctx context.Context, serviceModelUUID, vnfCustomizationUUID, vfModuleCustomizationUUID, cvnfcCustomizationUUID string) (*catalog.CvnfcConfigurationCustomization, error) {
	return catalogResult(r.catalog.CvnfcConfigurationCustomization(ctx,
		serviceModelUUID, vnfCustomizationUUID, vfModuleCustomizationUUID, cvnfcCustomizationUUID))
}

// RequestDetails returns the requestDetails of the stored request body. A
// blank requestID, or a request without a body, yields nil.
func (r *Resolver) RequestDetails(ctx context.Context, requestID string) (*flow.RequestDetails, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, nil
	}
	req, err := r.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	if strings.TrimSpace(req.RequestBody) == "" {
		return nil, nil
	}
	if !gjson.Valid(req.RequestBody) {
		return nil, fmt.Errorf("request %s: request body is not valid JSON", requestID)
	}

	raw := gjson.Get(req.RequestBody, "requestDetails")
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil, nil
	}
	var details flow.RequestDetails
	if err := json.Unmarshal([]byte(raw.Raw), &details); err != nil {
		return nil, fmt.Errorf("failed to decode request details of %s: %w", requestID, err)
	}
	return &details, nil
}

func (r *Resolver) UpdateRequestVnfID(ctx context.Context, requestID, vnfID string) error {
	return r.updateRequest(ctx, requestID, store.ResourceIDUpdate{VnfID: vnfID})
}

func (r *Resolver) UpdateRequestVfModuleID(ctx context.Context, requestID, vfModuleID string) error {
	return r.updateRequest(ctx, requestID, store.ResourceIDUpdate{VfModuleID: vfModuleID})
}

func (r *Resolver) UpdateRequestVolumeGroupID(ctx context.Context, requestID, volumeGroupID string) error {
	return r.updateRequest(ctx, requestID, store.ResourceIDUpdate{VolumeGroupID: volumeGroupID})
}

func (r *Resolver) UpdateRequestNetworkID(ctx context.Context, requestID, networkID string) error {
	return r.updateRequest(ctx, requestID, store.ResourceIDUpdate{NetworkID: networkID})
}

// updateRequest skips blank request ids with a warning; the request record
// is optional for a-la-carte flows.
func (r *Resolver) updateRequest(ctx context.Context, requestID string, update store.ResourceIDUpdate) error {
	if requestID == "" {
		r.logger.Warn("No active request to update", slog.Any("update", update))
		return nil
	}
	if err := r.store.UpdateRequestResourceIDs(ctx, requestID, update); err != nil {
		return fmt.Errorf("failed to update request %s: %w", requestID, err)
	}
	return nil
}

// LoadOriginalFlowExecutionPath returns the path of the request requestID
// retries. See flow.Replayer.
func (r *Resolver) LoadOriginalFlowExecutionPath(ctx context.Context, requestID string) (flow.ExecutionPath, error) {
	return r.replayer.LoadOriginalFlowExecutionPath(ctx, requestID)
}
