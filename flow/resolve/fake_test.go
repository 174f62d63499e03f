package resolve

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dshills/bbflow/flow/catalog"
	"github.com/dshills/bbflow/flow/inventory"
)

// fakeInventory serves canned JSON keyed by URI.Build() and records every
// URI it was asked for.
type fakeInventory struct {
	mu      sync.Mutex
	objects map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{objects: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeInventory) put(uri inventory.URI, body string) {
	f.objects[uri.Build()] = body
}

func (f *fakeInventory) Get(_ context.Context, uri inventory.URI, out any) (bool, error) {
	key := uri.Build()
	f.mu.Lock()
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	err := f.errs[key]
	f.mu.Unlock()

	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	return true, json.Unmarshal([]byte(body), out)
}

func (f *fakeInventory) Exists(ctx context.Context, uri inventory.URI) (bool, error) {
	return f.Get(ctx, uri, nil)
}

func (f *fakeInventory) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeCatalog returns its fields, or catalog.ErrNotFound when they are nil.
type fakeCatalog struct {
	service        *catalog.Service
	instanceGroup  *catalog.InstanceGroup
	vnfcGroups     []catalog.VnfcInstanceGroupCustomization
	collectionCust []catalog.CollectionResourceInstanceGroupCustomization
	vfModuleCust   *catalog.VfModuleCustomization
	cvnfcConfig    *catalog.CvnfcConfigurationCustomization
	err            error
}

var _ catalog.Client = (*fakeCatalog)(nil)

func orNotFound[T any](v T, present bool, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if !present {
		return zero, catalog.ErrNotFound
	}
	return v, nil
}

func (f *fakeCatalog) ServiceByModelUUID(context.Context, string) (*catalog.Service, error) {
	return orNotFound(f.service, f.service != nil, f.err)
}

func (f *fakeCatalog) ServiceByModelVersionAndInvariantUUID(context.Context, string, string) (*catalog.Service, error) {
	return orNotFound(f.service, f.service != nil, f.err)
}

func (f *fakeCatalog) VnfcInstanceGroupsByVnfResourceCust(context.Context, string) ([]catalog.VnfcInstanceGroupCustomization, error) {
	return orNotFound(f.vnfcGroups, len(f.vnfcGroups) > 0, f.err)
}

func (f *fakeCatalog) InstanceGroupByModelUUID(context.Context, string) (*catalog.InstanceGroup, error) {
	return orNotFound(f.instanceGroup, f.instanceGroup != nil, f.err)
}

func (f *fakeCatalog) CollectionResourceInstanceGroupCustomizations(context.Context, string) ([]catalog.CollectionResourceInstanceGroupCustomization, error) {
	return orNotFound(f.collectionCust, len(f.collectionCust) > 0, f.err)
}

func (f *fakeCatalog) VfModuleCustomization(context.Context, string) (*catalog.VfModuleCustomization, error) {
	return orNotFound(f.vfModuleCust, f.vfModuleCust != nil, f.err)
}

func (f *fakeCatalog) CvnfcConfigurationCustomization(context.Context, string, string, string, string) (*catalog.CvnfcConfigurationCustomization, error) {
	return orNotFound(f.cvnfcConfig, f.cvnfcConfig != nil, f.err)
}
