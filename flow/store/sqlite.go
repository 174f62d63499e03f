package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It stores requests and processing data in a single-file database.
// Designed for:
//   - Development and testing with zero setup
//   - Single-node deployments requiring persistence
//
// SQLiteStore uses WAL mode for concurrent reads and a single writer
// connection, which serializes all writes.
//
// Schema:
//   - infra_active_requests: request records (JSON document per request)
//   - request_processing_data: named values per request, unique per name
type SQLiteStore struct {
	*sqlStore
	path string
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS infra_active_requests (
			request_id TEXT NOT NULL PRIMARY KEY,
			original_request_id TEXT NOT NULL DEFAULT '',
			request_status TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_original ON infra_active_requests(original_request_id)`,
		`CREATE TABLE IF NOT EXISTS request_processing_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			so_request_id TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			tag TEXT NOT NULL DEFAULT '',
			grouping_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(so_request_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processing_request ON request_processing_data(so_request_id)`,
	},
	upsertRequest: `
		INSERT INTO infra_active_requests (request_id, original_request_id, request_status, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			original_request_id = excluded.original_request_id,
			request_status = excluded.request_status,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`,
	upsertProcessing: `
		INSERT INTO request_processing_data (so_request_id, name, value, tag, grouping_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(so_request_id, name) DO UPDATE SET
			value = excluded.value,
			tag = excluded.tag,
			grouping_id = excluded.grouping_id
	`,
	// SQLite has a single writer connection, the transaction already
	// holds the lock.
	selectForUpdate: `SELECT data FROM infra_active_requests WHERE request_id = ?`,
}

// NewSQLiteStore creates a new SQLite-backed store.
//
// The path parameter specifies the database file location:
//   - "./bbflow.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The store automatically creates the database file and tables, enables WAL
// mode and sets a busy timeout.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite supports one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	core, err := newSQLStore(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{sqlStore: core, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}
