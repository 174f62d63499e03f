package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/archive"
	"github.com/dshills/bbflow/flow/policy"
	"github.com/dshills/bbflow/flow/resolve"
	"github.com/dshills/bbflow/flow/store"
	"github.com/dshills/bbflow/internal/server"
)

const pathBody = `[
  {"buildingBlock": {"mso-id": "m1", "bpmn-flow-name": "AssignVnfBB", "key": "k1"},
   "requestId": "orig", "workflowResourceIds": {"vnfId": "vnf-1"}},
  {"buildingBlock": {"mso-id": "m2", "bpmn-flow-name": "ActivateVnfBB", "key": "k2"},
   "requestId": "orig", "configurationResourceKeys": null}
]`

type fakeResolver struct {
	steps []resolve.StepInputs
	err   error
}

func (f *fakeResolver) ResolveOriginalPlan(context.Context, string) ([]resolve.StepInputs, error) {
	return f.steps, f.err
}

type fakePolicy struct {
	data *policy.DictionaryData
	err  error
	args []string
}

func (f *fakePolicy) AllowedTreatments(_ context.Context, bbID, workStep string) (*policy.DictionaryData, error) {
	f.args = []string{bbID, workStep}
	return f.data, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, opts ...server.Option) (*store.MemStore, http.Handler) {
	t.Helper()
	st := store.NewMemStore()
	t.Cleanup(func() { _ = st.Close() })

	srv := server.NewServer(st, flow.NewReplayer(st), opts...)
	return st, srv.SetupRoutes()
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) server.ErrorResponse {
	t.Helper()
	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bbflow", resp.Service)
	assert.Equal(t, server.StatusHealthy, resp.Status)
}

func TestHealthStoreDown(t *testing.T) {
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	h := server.NewServer(st, flow.NewReplayer(st)).SetupRoutes()
	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, server.StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Error, "closed")
}

func TestCreateRequest(t *testing.T) {
	st, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/requests",
		`{"requestAction":"createInstance","originalRequestId":"orig"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created store.InfraActiveRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.RequestID)
	assert.False(t, created.StartTime.IsZero())

	got, err := st.GetRequest(context.Background(), created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "orig", got.OriginalRequestID)
}

func TestCreateRequestWithHeaderID(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/requests", `{}`, server.HeaderRequestID, "req-1")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/requests/req-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/requests", `{}`, server.HeaderRequestID, "req-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "req-1")
}

func TestCreateRequestRejectsExistingBodyID(t *testing.T) {
	st, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/requests", `{"originalRequestId":"orig-A"}`,
		server.HeaderRequestID, "req-1")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/requests", `{"requestId":"req-1","originalRequestId":"orig-B"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "req-1")

	got, err := st.GetRequest(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, "orig-A", got.OriginalRequestID)

	w = do(t, h, http.MethodPost, "/requests", `{"requestId":"req-2"}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateRequestInvalidJSON(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/requests", `{"requestId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, decodeError(t, w).Status)
}

func TestGetRequestNotFound(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/requests/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlowExecutionPath(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodPut, "/requests/orig/flow-execution-path", pathBody)
	require.Equal(t, http.StatusOK, w.Code)

	var saved server.PathSavedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, 2, saved.Count)

	w = do(t, h, http.MethodGet, "/requests/orig/flow-execution-path", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.PathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"AssignVnfBB", "ActivateVnfBB"}, resp.FlowExecutionPath.Names())
	assert.Equal(t, "vnf-1", resp.FlowExecutionPath[0].WorkflowResourceIDs.VnfID)
}

func TestSaveFlowExecutionPathRejectsBadBodies(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"null", "null"},
		{"object", `{"buildingBlock":{}}`},
		{"missing flow name", `[{"buildingBlock":{"mso-id":"m1"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPut, "/requests/r1/flow-execution-path", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestOriginalFlowExecutionPath(t *testing.T) {
	st, h := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, st.SaveRequest(ctx, store.InfraActiveRequest{RequestID: "retry", OriginalRequestID: "orig"}))
	require.NoError(t, st.SaveRequest(ctx, store.InfraActiveRequest{RequestID: "first"}))

	// The original has no path yet.
	w := do(t, h, http.MethodGet, "/requests/retry/original-flow-execution-path", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeError(t, w).Error, "orig")

	w = do(t, h, http.MethodPut, "/requests/orig/flow-execution-path", pathBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/requests/retry/original-flow-execution-path", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp server.PathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "retry", resp.RequestID)
	assert.Equal(t, 2, resp.Count)

	w = do(t, h, http.MethodGet, "/requests/first/original-flow-execution-path", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, "/requests/unknown/original-flow-execution-path", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolve(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, h := newTestServer(t)
		w := do(t, h, http.MethodPost, "/requests/r1/resolve", "")
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("resolved", func(t *testing.T) {
		res := &fakeResolver{steps: []resolve.StepInputs{
			{Index: 0, Step: flow.ExecuteBuildingBlock{BuildingBlock: flow.BuildingBlock{BpmnFlowName: "AssignVnfBB"}}},
		}}
		_, h := newTestServer(t, server.WithResolver(res))

		w := do(t, h, http.MethodPost, "/requests/r1/resolve", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp server.ResolveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "AssignVnfBB", resp.Steps[0].Step.FlowName())
	})

	t.Run("multiple found", func(t *testing.T) {
		res := &fakeResolver{err: &flow.StepError{
			Index: 1,
			Err:   &resolve.MultipleObjectsFoundError{Kind: "l3-network", Count: 2, Message: "Multiple Networks Returned"},
		}}
		_, h := newTestServer(t, server.WithResolver(res))

		w := do(t, h, http.MethodPost, "/requests/r1/resolve", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeError(t, w).Error, "Multiple Networks Returned")
	})

	t.Run("upstream failure", func(t *testing.T) {
		_, h := newTestServer(t, server.WithResolver(&fakeResolver{err: errors.New("boom")}))

		w := do(t, h, http.MethodPost, "/requests/r1/resolve", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestArchive(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer func() { _ = bucket.Close() }()

	st := store.NewMemStore()
	defer func() { _ = st.Close() }()

	writer, err := archive.NewWriter(bucket, "archives")
	require.NoError(t, err)
	srv := server.NewServer(st, flow.NewReplayer(st),
		server.WithArchiver(archive.NewArchiver(st, writer)),
	)
	h := srv.SetupRoutes()

	require.NoError(t, st.SaveRequest(context.Background(), store.InfraActiveRequest{RequestID: "r1"}))

	w := do(t, h, http.MethodPost, "/requests/r1/archive", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/requests/r1/archive", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPut, "/requests/r1/flow-execution-path", pathBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/requests/r1/archive", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/requests/r1/archive", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rec archive.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "r1", rec.RequestID)
	assert.Len(t, rec.FlowExecutionPath, 2)
}

func TestTreatments(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		_, h := newTestServer(t)
		w := do(t, h, http.MethodGet, "/policy/treatments?bbId=AssignVnfBB&workStep=*", "")
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		p := &fakePolicy{data: &policy.DictionaryData{
			BBID:       policy.StringValue{String: "AssignVnfBB"},
			Treatments: policy.StringValue{String: "Rollback, Abort"},
		}}
		_, h := newTestServer(t, server.WithPolicy(p))

		w := do(t, h, http.MethodGet, "/policy/treatments?bbId=AssignVnfBB&workStep=*", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"AssignVnfBB", "*"}, p.args)

		var data policy.DictionaryData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
		assert.Equal(t, []string{"Rollback", "Abort"}, data.TreatmentList())
	})

	t.Run("missing params", func(t *testing.T) {
		_, h := newTestServer(t, server.WithPolicy(&fakePolicy{}))
		w := do(t, h, http.MethodGet, "/policy/treatments?bbId=AssignVnfBB", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no treatment", func(t *testing.T) {
		_, h := newTestServer(t, server.WithPolicy(&fakePolicy{err: policy.ErrNoTreatment}))
		w := do(t, h, http.MethodGet, "/policy/treatments?bbId=X&workStep=Y", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bbflow_test_total",
		Help: "test counter",
	})
	registry.MustRegister(counter)
	counter.Inc()

	_, h := newTestServer(t, server.WithGatherer(registry))
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bbflow_test_total 1")
}
