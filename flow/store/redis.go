package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of Store.
//
// Key layout (prefix defaults to "bbflow"):
//
//	<prefix>:request:<requestId>  JSON-encoded InfraActiveRequest
//	<prefix>:pd:<soRequestId>     hash of name -> JSON-encoded ProcessingData
//
// Resource id updates run under WATCH so a concurrent writer forces a retry
// rather than losing fields.
type RedisStore struct {
	client *redis.Client
	prefix string
	mu     sync.RWMutex
	closed bool
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the prefix used for every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

const maxWatchRetries = 5

// NewRedisStore creates a store on an existing client. The store owns the
// client and closes it in Close.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "bbflow"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRedisStoreFromURL parses a redis:// URL, connects and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string, opts ...RedisOption) (*RedisStore, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStore(client, opts...), nil
}

func (s *RedisStore) requestKey(requestID string) string {
	return s.prefix + ":request:" + requestID
}

func (s *RedisStore) dataKey(soRequestID string) string {
	return s.prefix + ":pd:" + soRequestID
}

func (s *RedisStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// SaveRequest stores req as a JSON document.
func (s *RedisStore) SaveRequest(ctx context.Context, req InfraActiveRequest) error {
	if req.RequestID == "" {
		return ErrMissingRequestID
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := s.client.Set(ctx, s.requestKey(req.RequestID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

// GetRequest loads a request record.
func (s *RedisStore) GetRequest(ctx context.Context, requestID string) (InfraActiveRequest, error) {
	if err := s.checkOpen(); err != nil {
		return InfraActiveRequest{}, err
	}

	data, err := s.client.Get(ctx, s.requestKey(requestID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return InfraActiveRequest{}, ErrNotFound
	}
	if err != nil {
		return InfraActiveRequest{}, fmt.Errorf("failed to load request: %w", err)
	}

	var req InfraActiveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return InfraActiveRequest{}, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return req, nil
}

// UpdateRequestResourceIDs applies update with optimistic locking.
func (s *RedisStore) UpdateRequestResourceIDs(ctx context.Context, requestID string, update ResourceIDUpdate) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	key := s.requestKey(requestID)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}

		var req InfraActiveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to unmarshal request: %w", err)
		}
		update.Apply(&req)

		updated, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return err
	}
	return fmt.Errorf("failed to update request %s: too much contention", requestID)
}

// SaveProcessingData stores data in the request's hash.
func (s *RedisStore) SaveProcessingData(ctx context.Context, data ProcessingData) error {
	if data.SoRequestID == "" {
		return ErrMissingRequestID
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal processing data: %w", err)
	}
	if err := s.client.HSet(ctx, s.dataKey(data.SoRequestID), data.Name, encoded).Err(); err != nil {
		return fmt.Errorf("failed to save processing data: %w", err)
	}
	return nil
}

// GetProcessingData loads a named entry.
func (s *RedisStore) GetProcessingData(ctx context.Context, soRequestID, name string) (ProcessingData, error) {
	if err := s.checkOpen(); err != nil {
		return ProcessingData{}, err
	}

	raw, err := s.client.HGet(ctx, s.dataKey(soRequestID), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return ProcessingData{}, ErrNotFound
	}
	if err != nil {
		return ProcessingData{}, fmt.Errorf("failed to load processing data: %w", err)
	}

	var pd ProcessingData
	if err := json.Unmarshal(raw, &pd); err != nil {
		return ProcessingData{}, fmt.Errorf("failed to unmarshal processing data: %w", err)
	}
	return pd, nil
}

// ListProcessingData returns all entries of a request ordered by name.
func (s *RedisStore) ListProcessingData(ctx context.Context, soRequestID string) ([]ProcessingData, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	all, err := s.client.HGetAll(ctx, s.dataKey(soRequestID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query processing data: %w", err)
	}

	result := make([]ProcessingData, 0, len(all))
	for name, raw := range all {
		var pd ProcessingData
		if err := json.Unmarshal([]byte(raw), &pd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal processing data %q: %w", name, err)
		}
		result = append(result, pd)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Ping checks the server connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.client.Ping(ctx).Err()
}

// Close closes the client. Calling Close multiple times is safe.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
