// Package archive copies completed requests and their execution paths to
// blob storage (S3, GCS, Azure, local files) for audit.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/dshills/bbflow/flow"
	"github.com/dshills/bbflow/flow/store"
)

type (
	// Writer stores archive records in a bucket under
	// "<prefix>/<requestId>.json".
	Writer struct {
		bucket Bucket
		prefix string
	}

	// Bucket is the subset of *blob.Bucket the Writer uses.
	Bucket interface {
		WriteAll(context.Context, string, []byte, *blob.WriterOptions) error
		ReadAll(context.Context, string) ([]byte, error)
	}

	// Record is the archived document of one request.
	Record struct {
		RequestID         string                   `json:"requestId"`
		Request           store.InfraActiveRequest `json:"request"`
		FlowExecutionPath flow.ExecutionPath       `json:"flowExecutionPath"`
		ProcessingData    []store.ProcessingData   `json:"processingData,omitempty"`
		ArchivedAt        time.Time                `json:"archivedAt"`
	}
)

var (
	// ErrBucketRequired is returned by NewWriter for a nil bucket
	ErrBucketRequired = errors.New("bucket is required")

	// ErrRecordRequired is returned when Write is given a nil record
	ErrRecordRequired = errors.New("archive record is required")

	// ErrArchiveNotFound is returned when no archive exists for a request
	ErrArchiveNotFound = errors.New("archive not found")

	// ErrRequestIDRequired is returned for a record without a request id
	ErrRequestIDRequired = errors.New("archive record has no request id")
)

// NewWriter creates a Writer storing archives under prefix in bucket
func NewWriter(bucket Bucket, prefix string) (*Writer, error) {
	if bucket == nil {
		return nil, ErrBucketRequired
	}
	return &Writer{bucket: bucket, prefix: prefix}, nil
}

// Write stores rec, replacing an earlier archive of the same request.
func (w *Writer) Write(ctx context.Context, rec *Record) error {
	if rec == nil {
		return ErrRecordRequired
	}
	if rec.RequestID == "" {
		return ErrRequestIDRequired
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal archive record: %w", err)
	}
	if err := w.bucket.WriteAll(ctx, w.Key(rec.RequestID), data, &blob.WriterOptions{
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("failed to write archive %s: %w", rec.RequestID, err)
	}
	return nil
}

// Read loads the archive of requestID.
func (w *Writer) Read(ctx context.Context, requestID string) (*Record, error) {
	data, err := w.bucket.ReadAll(ctx, w.Key(requestID))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%s: %w", requestID, ErrArchiveNotFound)
		}
		return nil, fmt.Errorf("failed to read archive %s: %w", requestID, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive %s: %w", requestID, err)
	}
	return &rec, nil
}

// Key returns the object key for requestID.
func (w *Writer) Key(requestID string) string {
	if w.prefix == "" {
		return requestID + ".json"
	}
	prefix := w.prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + requestID + ".json"
}
