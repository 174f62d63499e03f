package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested request ID or processing-data
	// entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by every operation after Close has been called.
	ErrClosed = errors.New("store is closed")

	// ErrMissingRequestID is returned when a record is saved without the
	// identifier it is keyed by.
	ErrMissingRequestID = errors.New("request id is required")
)

// Store provides persistence for orchestration requests and the processing
// data attached to them (most importantly the flow execution path).
//
// It enables:
//   - Looking up the active request record by request ID
//   - Following a request to the original request it retries
//   - Reading and writing named processing-data values per request
//
// Implementations can use:
//   - In-memory storage (for testing, see memory.go)
//   - Relational databases (SQLite, MySQL)
//   - Key-value stores (Redis)
//
// All implementations are safe for concurrent use. Writes to the same
// (soRequestID, name) pair are serialized and the last writer wins.
type Store interface {
	// SaveRequest inserts or replaces the request record keyed by
	// req.RequestID.
	SaveRequest(ctx context.Context, req InfraActiveRequest) error

	// GetRequest retrieves a request record.
	//
	// Returns ErrNotFound if requestID doesn't exist.
	GetRequest(ctx context.Context, requestID string) (InfraActiveRequest, error)

	// UpdateRequestResourceIDs sets the non-empty identifiers of update on
	// the stored request. Empty fields leave the stored value unchanged.
	//
	// Returns ErrNotFound if requestID doesn't exist.
	UpdateRequestResourceIDs(ctx context.Context, requestID string, update ResourceIDUpdate) error

	// SaveProcessingData inserts or replaces the entry keyed by
	// (data.SoRequestID, data.Name).
	SaveProcessingData(ctx context.Context, data ProcessingData) error

	// GetProcessingData retrieves a single named entry for a request.
	//
	// Returns ErrNotFound if no entry exists for the pair.
	GetProcessingData(ctx context.Context, soRequestID, name string) (ProcessingData, error)

	// ListProcessingData returns every entry of a request ordered by name.
	// An unknown request yields an empty list, not an error.
	ListProcessingData(ctx context.Context, soRequestID string) ([]ProcessingData, error)

	// Close releases the underlying resources. Calling Close more than once
	// is a no-op.
	Close() error
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InfraActiveRequest is the persisted record of an orchestration request.
type InfraActiveRequest struct {
	RequestID         string     `json:"requestId"`
	OriginalRequestID string     `json:"originalRequestId,omitempty"`
	RequestStatus     string     `json:"requestStatus,omitempty"`
	RequestAction     string     `json:"requestAction,omitempty"`
	RequestScope      string     `json:"requestScope,omitempty"`
	RequestBody       string     `json:"requestBody,omitempty"`
	ServiceInstanceID string     `json:"serviceInstanceId,omitempty"`
	VnfID             string     `json:"vnfId,omitempty"`
	VfModuleID        string     `json:"vfModuleId,omitempty"`
	VolumeGroupID     string     `json:"volumeGroupId,omitempty"`
	NetworkID         string     `json:"networkId,omitempty"`
	Progress          int64      `json:"progress,omitempty"`
	LastModifiedBy    string     `json:"lastModifiedBy,omitempty"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           *time.Time `json:"endTime,omitempty"`
}

// ResourceIDUpdate carries the inventory identifiers assigned while a request
// executes.
type ResourceIDUpdate struct {
	VnfID         string
	VfModuleID    string
	VolumeGroupID string
	NetworkID     string
}

// Apply copies the non-empty fields of u onto req.
func (u ResourceIDUpdate) Apply(req *InfraActiveRequest) {
	if u.VnfID != "" {
		req.VnfID = u.VnfID
	}
	if u.VfModuleID != "" {
		req.VfModuleID = u.VfModuleID
	}
	if u.VolumeGroupID != "" {
		req.VolumeGroupID = u.VolumeGroupID
	}
	if u.NetworkID != "" {
		req.NetworkID = u.NetworkID
	}
}

// ProcessingData is a named value attached to a request.
type ProcessingData struct {
	SoRequestID string `json:"soRequestId"`
	Name        string `json:"name"`
	Value       string `json:"value"`
	Tag         string `json:"tag,omitempty"`
	GroupingID  string `json:"groupingId,omitempty"`
}
