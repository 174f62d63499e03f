package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Store.
//
// Designed for:
//   - Testing and development
//   - Single-process deployments where persistence isn't required
//
// MemStore is thread-safe. Data is lost when the process terminates.
type MemStore struct {
	mu       sync.RWMutex
	requests map[string]InfraActiveRequest
	data     map[string]map[string]ProcessingData // soRequestID -> name -> entry
	closed   bool
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		requests: make(map[string]InfraActiveRequest),
		data:     make(map[string]map[string]ProcessingData),
	}
}

// SaveRequest stores a copy of req, replacing any previous record.
func (m *MemStore) SaveRequest(_ context.Context, req InfraActiveRequest) error {
	if req.RequestID == "" {
		return ErrMissingRequestID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.requests[req.RequestID] = req
	return nil
}

// GetRequest returns the stored request record.
func (m *MemStore) GetRequest(_ context.Context, requestID string) (InfraActiveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return InfraActiveRequest{}, ErrClosed
	}

	req, ok := m.requests[requestID]
	if !ok {
		return InfraActiveRequest{}, ErrNotFound
	}
	return req, nil
}

// UpdateRequestResourceIDs applies update to the stored request.
func (m *MemStore) UpdateRequestResourceIDs(_ context.Context, requestID string, update ResourceIDUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	req, ok := m.requests[requestID]
	if !ok {
		return ErrNotFound
	}
	update.Apply(&req)
	m.requests[requestID] = req
	return nil
}

// SaveProcessingData stores data, replacing an entry with the same name.
func (m *MemStore) SaveProcessingData(_ context.Context, data ProcessingData) error {
	if data.SoRequestID == "" {
		return ErrMissingRequestID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	entries, ok := m.data[data.SoRequestID]
	if !ok {
		entries = make(map[string]ProcessingData)
		m.data[data.SoRequestID] = entries
	}
	entries[data.Name] = data
	return nil
}

// GetProcessingData returns the named entry for a request.
func (m *MemStore) GetProcessingData(_ context.Context, soRequestID, name string) (ProcessingData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ProcessingData{}, ErrClosed
	}

	entry, ok := m.data[soRequestID][name]
	if !ok {
		return ProcessingData{}, ErrNotFound
	}
	return entry, nil
}

// ListProcessingData returns all entries of a request ordered by name.
func (m *MemStore) ListProcessingData(_ context.Context, soRequestID string) ([]ProcessingData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	entries := m.data[soRequestID]
	result := make([]ProcessingData, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Close marks the store closed. Stored data is released.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.requests = nil
	m.data = nil
	return nil
}
