package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/bbflow/flow/emit"
	"github.com/dshills/bbflow/flow/store"
)

const (
	// FlowExecutionPathKey is the processing-data name a path is stored under.
	FlowExecutionPathKey = "flowExecutionPath"

	// ExecutionDataTag tags processing data written by SaveFlowExecutionPath.
	ExecutionDataTag = "BPMNExecutionData"
)

const (
	sourceOwn      = "own"
	sourceOriginal = "original"
)

// Replayer loads and saves the execution paths of requests.
//
// It is safe for concurrent use when the underlying store is.
type Replayer struct {
	store   store.Store
	emitter emit.Emitter
	metrics *Metrics
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithEmitter sets the emitter receiving path events.
func WithEmitter(e emit.Emitter) Option {
	return func(r *Replayer) {
		if e != nil {
			r.emitter = e
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Replayer) {
		r.metrics = m
	}
}

// NewReplayer creates a Replayer over st.
func NewReplayer(st store.Store, opts ...Option) *Replayer {
	r := &Replayer{
		store:   st,
		emitter: emit.NewNullEmitter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadOriginalFlowExecutionPath returns the path persisted for the original
// request that requestID retries.
//
// Errors:
//   - store.ErrNotFound when requestID itself is unknown
//   - ErrNoOriginalRequest when the request has no original request id
//   - ErrExecutionPathNotFound when the original request has no usable path
func (r *Replayer) LoadOriginalFlowExecutionPath(ctx context.Context, requestID string) (ExecutionPath, error) {
	req, err := r.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	if req.OriginalRequestID == "" {
		r.emitter.Emit(emit.Event{
			RequestID: requestID,
			Step:      -1,
			Msg:       emit.MsgPathNotFound,
			Meta:      map[string]any{"error": ErrNoOriginalRequest.Error()},
		})
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNoOriginalRequest)
	}

	return r.load(ctx, requestID, req.OriginalRequestID, sourceOriginal)
}

// LoadFlowExecutionPath returns the path persisted for requestID itself.
func (r *Replayer) LoadFlowExecutionPath(ctx context.Context, requestID string) (ExecutionPath, error) {
	return r.load(ctx, requestID, requestID, sourceOwn)
}

// LoadPlan is LoadOriginalFlowExecutionPath wrapped in a Plan.
func (r *Replayer) LoadPlan(ctx context.Context, requestID string) (Plan, error) {
	path, err := r.LoadOriginalFlowExecutionPath(ctx, requestID)
	if err != nil {
		return Plan{}, err
	}
	return NewPlan(path), nil
}

// load reads the path stored under soRequestID. requestID is the request the
// caller asked about and is used for events.
func (r *Replayer) load(ctx context.Context, requestID, soRequestID, source string) (ExecutionPath, error) {
	start := time.Now()

	notFound := func(reason string) error {
		r.metrics.recordLoad(source, "not_found", 0, time.Since(start))
		r.emitter.Emit(emit.Event{
			RequestID: requestID,
			Step:      -1,
			Msg:       emit.MsgPathNotFound,
			Meta: map[string]any{
				"so_request_id": soRequestID,
				"source":        source,
				"error":         reason,
			},
		})
		return fmt.Errorf("%w for request %s: %s", ErrExecutionPathNotFound, soRequestID, reason)
	}

	pd, err := r.store.GetProcessingData(ctx, soRequestID, FlowExecutionPathKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("no processing data")
	}
	if err != nil {
		r.metrics.recordLoad(source, "error", 0, time.Since(start))
		return nil, fmt.Errorf("failed to load execution path for %s: %w", soRequestID, err)
	}
	if strings.TrimSpace(pd.Value) == "" {
		return nil, notFound("blank value")
	}

	path, err := DecodeExecutionPath([]byte(pd.Value))
	if errors.Is(err, ErrEmptyExecutionPath) {
		return nil, notFound("null value")
	}
	if err != nil {
		r.metrics.recordLoad(source, "error", 0, time.Since(start))
		return nil, fmt.Errorf("failed to decode execution path for %s: %w", soRequestID, err)
	}
	if len(path) == 0 {
		return nil, notFound("empty path")
	}

	r.metrics.recordLoad(source, "found", len(path), time.Since(start))
	r.emitter.Emit(emit.Event{
		RequestID: requestID,
		Step:      -1,
		Msg:       emit.MsgPathLoaded,
		Meta: map[string]any{
			"so_request_id": soRequestID,
			"source":        source,
			"steps":         len(path),
		},
	})
	return path, nil
}

// SaveFlowExecutionPath validates and persists path for requestID,
// replacing any previously saved path.
func (r *Replayer) SaveFlowExecutionPath(ctx context.Context, requestID string, path ExecutionPath) error {
	if requestID == "" {
		r.metrics.recordSave("invalid")
		return store.ErrMissingRequestID
	}
	if err := path.Validate(); err != nil {
		r.metrics.recordSave("invalid")
		return fmt.Errorf("%w: %w", ErrInvalidExecutionPath, err)
	}

	data, err := EncodeExecutionPath(path)
	if err != nil {
		r.metrics.recordSave("error")
		return err
	}

	err = r.store.SaveProcessingData(ctx, store.ProcessingData{
		SoRequestID: requestID,
		Name:        FlowExecutionPathKey,
		Value:       string(data),
		Tag:         ExecutionDataTag,
	})
	if err != nil {
		r.metrics.recordSave("error")
		return fmt.Errorf("failed to save execution path for %s: %w", requestID, err)
	}

	r.metrics.recordSave("ok")
	r.emitter.Emit(emit.Event{
		RequestID: requestID,
		Step:      -1,
		Msg:       emit.MsgPathSaved,
		Meta:      map[string]any{"steps": len(path)},
	})
	return nil
}
