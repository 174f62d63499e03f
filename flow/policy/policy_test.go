package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/bbflow/flow/rest"
)

const treatmentsBody = `{
	"dictionaryJson": {"DictionaryDatas": [
		{"id":{"string":"1"},"bbid":{"string":"AssignNetworkBB"},"workstep":{"string":"*"},"treatments":{"string":"Rollback, Abort"}},
		{"id":{"string":"2"},"bbid":{"string":"CreateNetworkBB"},"workstep":{"string":"*"},"treatments":{"string":"Retry"}}
	]},
	"responseCode": 0,
	"responseMessage": "Success"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rc, err := rest.New(rest.Config{Name: "policy", BaseURL: srv.URL + "/pdp/api"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewClient(rc, logger), &buf
}

func TestGetDecision(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pdp/api/getDecision", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mso", req["ecompcomponentName"])
		attrs, _ := req["decisionAttributes"].(map[string]any)
		assert.Equal(t, "AssignNetworkBB", attrs["BB_ID"])
		assert.Equal(t, "123", attrs["ErrorCode"])

		_, _ = w.Write([]byte(`{"decision":"PERMIT","details":"Abort"}`))
	})

	d, err := c.GetDecision(context.Background(), DecisionAttributes{
		ServiceType: "st",
		VnfType:     "vt",
		BBID:        "AssignNetworkBB",
		WorkStep:    "*",
		ErrorCode:   "123",
	})
	require.NoError(t, err)
	assert.Equal(t, "PERMIT", d.Decision)
	assert.Equal(t, "Abort", d.Details)
}

func TestAllowedTreatments(t *testing.T) {
	c, logs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdp/api/getDictionaryItems", r.URL.Path)

		var req dictionaryItemsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "RainyDayTreatments", req.Dictionary)
		assert.Equal(t, "Decision", req.DictionaryType)

		_, _ = w.Write([]byte(treatmentsBody))
	})
	ctx := context.Background()

	entry, err := c.AllowedTreatments(ctx, "AssignNetworkBB", "*")
	require.NoError(t, err)
	assert.Equal(t, "1", entry.ID.String)
	assert.Equal(t, []string{"Rollback", "Abort"}, entry.TreatmentList())
	assert.Empty(t, logs.String())

	_, err = c.AllowedTreatments(ctx, "AssignNetworkBB", "assign")
	assert.ErrorIs(t, err, ErrNoTreatment)
	assert.Contains(t, logs.String(), "There is no AllowedTreatments")
}

func TestAllowedTreatments_ServerError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.AllowedTreatments(context.Background(), "AssignNetworkBB", "*")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTreatment)

	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}
