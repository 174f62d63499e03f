package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bbflow/flow/rest"
)

func newTestInventory(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc, err := rest.New(rest.Config{Name: "aai", BaseURL: srv.URL + "/aai/v24"})
	require.NoError(t, err)
	return NewHTTPClient(rc)
}

func TestHTTPClient_Get(t *testing.T) {
	c := newTestInventory(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/aai/v24/network/generic-vnfs/generic-vnf/vnf-1", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("depth"))
		_, _ = w.Write([]byte(`{"vnf-id":"vnf-1","vnf-name":"demo","relationship-list":{"relationship":[
			{"related-to":"vpn-binding","relationship-data":[{"relationship-key":"vpn-binding.vpn-id","relationship-value":"vpn-1"}]}]}}`))
	})

	var vnf GenericVnf
	found, err := c.Get(context.Background(), NewResourceURI(TypeGenericVnf, "vnf-1").Depth(DepthOne), &vnf)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "demo", vnf.VnfName)

	rels := vnf.RelationshipList.ByType("vpn-binding")
	require.Len(t, rels, 1)
	assert.Equal(t, "vpn-1", rels[0].Value("vpn-binding.vpn-id"))
	assert.Empty(t, rels[0].Value("missing"))
}

func TestHTTPClient_GetNotFound(t *testing.T) {
	c := newTestInventory(t, http.NotFound)

	var vnf GenericVnf
	found, err := c.Get(context.Background(), NewResourceURI(TypeGenericVnf, "vnf-1"), &vnf)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestHTTPClient_GetServerError(t *testing.T) {
	c := newTestInventory(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Get(context.Background(), NewResourceURI(TypeGenericVnf, "vnf-1"), nil)
	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestHTTPClient_Exists(t *testing.T) {
	c := newTestInventory(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vf-module-name") == "present" {
			assert.Equal(t, "0", r.URL.Query().Get("depth"))
			_, _ = w.Write([]byte(`{"vf-module":[{"vf-module-id":"m1"}]}`))
			return
		}
		http.NotFound(w, r)
	})

	ctx := context.Background()
	ok, err := c.Exists(ctx, NewNodesURI(PluralVfModules).QueryParam("vf-module-name", "present"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, NewNodesURI(PluralVfModules).QueryParam("vf-module-name", "absent"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetList(t *testing.T) {
	c := newTestInventory(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("network-name") {
		case "two":
			_, _ = w.Write([]byte(`{"l3-network":[{"network-id":"n1"},{"network-id":"n2"}]}`))
		case "empty":
			_, _ = w.Write([]byte(`{}`))
		case "bad":
			_, _ = w.Write([]byte(`{"l3-network":{"network-id":"n1"}}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()
	uri := func(name string) URI { return NewPluralURI(PluralL3Networks).QueryParam("network-name", name) }

	nets, found, err := GetList[L3Network](ctx, c, uri("two"), PluralL3Networks)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, nets, 2)
	assert.Equal(t, "n2", nets[1].NetworkID)

	nets, found, err = GetList[L3Network](ctx, c, uri("empty"), PluralL3Networks)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, nets)

	nets, found, err = GetList[L3Network](ctx, c, uri("missing"), PluralL3Networks)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, nets)

	_, _, err = GetList[L3Network](ctx, c, uri("bad"), PluralL3Networks)
	assert.Error(t, err)
}
