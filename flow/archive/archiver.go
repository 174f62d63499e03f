package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/emit"
	"github.com/dshills/bbflow/flow/store"
)

// Archiver assembles archive records from the store and writes them.
type Archiver struct {
	store    store.Store
	replayer *flow.Replayer
	writer   *Writer
	emitter  emit.Emitter
	now      func() time.Time
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithEmitter sets the emitter that receives archive events. nil is ignored.
func WithEmitter(e emit.Emitter) Option {
	return func(a *Archiver) {
		if e != nil {
			a.emitter = e
		}
	}
}

// WithClock replaces time.Now for archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		a.now = now
	}
}

// NewArchiver creates an Archiver that reads request paths from st and
// writes records with w
func NewArchiver(st store.Store, w *Writer, opts ...Option) *Archiver {
	a := &Archiver{
		store:   st,
		writer:  w,
		emitter: emit.NewNullEmitter(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.replayer = flow.NewReplayer(st, flow.WithEmitter(a.emitter))
	return a
}

// ArchiveRequest writes the request record, its execution path and its
// processing data. A request without a persisted path fails with
// flow.ErrExecutionPathNotFound and nothing is written.
func (a *Archiver) ArchiveRequest(ctx context.Context, requestID string) (*Record, error) {
	req, err := a.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %s: %w", requestID, err)
	}
	path, err := a.replayer.LoadFlowExecutionPath(ctx, requestID)
	if err != nil {
		return nil, err
	}
	data, err := a.store.ListProcessingData(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing data of %s: %w", requestID, err)
	}

	rec := &Record{
		RequestID:         requestID,
		Request:           req,
		FlowExecutionPath: path,
		ProcessingData:    data,
		ArchivedAt:        a.now().UTC(),
	}
	if err := a.writer.Write(ctx, rec); err != nil {
		return nil, err
	}

	a.emitter.Emit(emit.Event{
		RequestID: requestID,
		Step:      -1,
		Msg:       emit.MsgArchived,
		Meta: map[string]any{
			"key":   a.writer.Key(requestID),
			"steps": len(path),
		},
	})
	return rec, nil
}

// Get reads a previously written archive.
func (a *Archiver) Get(ctx context.Context, requestID string) (*Record, error) {
	return a.writer.Read(ctx, requestID)
}
