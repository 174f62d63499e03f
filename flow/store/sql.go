package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	name             string
	schema           []string
	upsertRequest    string
	upsertProcessing string
	selectForUpdate  string
}

// sqlStore implements Store on top of database/sql. SQLiteStore and
// MySQLStore embed it and supply their dialect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	mu      sync.RWMutex
	closed  bool
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*sqlStore, error) {
	s := &sqlStore{db: db, dialect: d}
	if err := s.createTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *sqlStore) createTables(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s schema: %w", s.dialect.name, err)
		}
	}
	return nil
}

func (s *sqlStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// SaveRequest inserts or replaces a request record.
func (s *sqlStore) SaveRequest(ctx context.Context, req InfraActiveRequest) error {
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

	_, err = s.db.ExecContext(ctx, s.dialect.upsertRequest,
		req.RequestID, req.OriginalRequestID, req.RequestStatus, string(data))
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

// GetRequest retrieves a request record.
func (s *sqlStore) GetRequest(ctx context.Context, requestID string) (InfraActiveRequest, error) {
	if err := s.checkOpen(); err != nil {
		return InfraActiveRequest{}, err
	}

	query := `SELECT data FROM infra_active_requests WHERE request_id = ?`

	var data string
	err := s.db.QueryRowContext(ctx, query, requestID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return InfraActiveRequest{}, ErrNotFound
	}
	if err != nil {
		return InfraActiveRequest{}, fmt.Errorf("failed to load request: %w", err)
	}

	var req InfraActiveRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return InfraActiveRequest{}, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return req, nil
}

// UpdateRequestResourceIDs applies update inside a transaction so concurrent
// updates of different fields don't overwrite each other.
func (s *sqlStore) UpdateRequestResourceIDs(ctx context.Context, requestID string, update ResourceIDUpdate) (err error) {
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Ignore rollback error when already returning error
		}
	}()

	var data string
	err = tx.QueryRowContext(ctx, s.dialect.selectForUpdate, requestID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}

	var req InfraActiveRequest
	if err = json.Unmarshal([]byte(data), &req); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}
	update.Apply(&req)

	updated, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE infra_active_requests SET data = ? WHERE request_id = ?`,
		string(updated), requestID)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveProcessingData inserts or replaces a named entry.
func (s *sqlStore) SaveProcessingData(ctx context.Context, data ProcessingData) error {
	if data.SoRequestID == "" {
		return ErrMissingRequestID
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.dialect.upsertProcessing,
		data.SoRequestID, data.Name, data.Value, data.Tag, data.GroupingID)
	if err != nil {
		return fmt.Errorf("failed to save processing data: %w", err)
	}
	return nil
}

// GetProcessingData retrieves a named entry.
func (s *sqlStore) GetProcessingData(ctx context.Context, soRequestID, name string) (ProcessingData, error) {
	if err := s.checkOpen(); err != nil {
		return ProcessingData{}, err
	}

	query := `
		SELECT so_request_id, name, value, tag, grouping_id
		FROM request_processing_data
		WHERE so_request_id = ? AND name = ?
	`

	var pd ProcessingData
	err := s.db.QueryRowContext(ctx, query, soRequestID, name).Scan(
		&pd.SoRequestID, &pd.Name, &pd.Value, &pd.Tag, &pd.GroupingID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ProcessingData{}, ErrNotFound
	}
	if err != nil {
		return ProcessingData{}, fmt.Errorf("failed to load processing data: %w", err)
	}
	return pd, nil
}

// ListProcessingData returns every entry of a request ordered by name.
func (s *sqlStore) ListProcessingData(ctx context.Context, soRequestID string) ([]ProcessingData, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	query := `
		SELECT so_request_id, name, value, tag, grouping_id
		FROM request_processing_data
		WHERE so_request_id = ?
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, soRequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query processing data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []ProcessingData{}
	for rows.Next() {
		var pd ProcessingData
		if err := rows.Scan(&pd.SoRequestID, &pd.Name, &pd.Value, &pd.Tag, &pd.GroupingID); err != nil {
			return nil, fmt.Errorf("failed to scan processing data row: %w", err)
		}
		result = append(result, pd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processing data rows: %w", err)
	}
	return result, nil
}

// Ping verifies the database connection is alive.
func (s *sqlStore) Ping(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection. Calling Close multiple times is safe.
func (s *sqlStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
