package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// Designed for:
//   - Production deployments with several orchestrator instances
//   - Execution paths that must survive process restarts
//
// Resource id updates lock the request row with SELECT ... FOR UPDATE.
type MySQLStore struct {
	*sqlStore
}

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS infra_active_requests (
			request_id VARCHAR(255) NOT NULL PRIMARY KEY,
			original_request_id VARCHAR(255) NOT NULL DEFAULT '',
			request_status VARCHAR(64) NOT NULL DEFAULT '',
			data JSON NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_requests_original (original_request_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS request_processing_data (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			so_request_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			value LONGTEXT NOT NULL,
			tag VARCHAR(255) NOT NULL DEFAULT '',
			grouping_id VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY unique_request_name (so_request_id, name),
			INDEX idx_processing_request (so_request_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
	upsertRequest: `
		INSERT INTO infra_active_requests (request_id, original_request_id, request_status, data)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			original_request_id = VALUES(original_request_id),
			request_status = VALUES(request_status),
			data = VALUES(data)
	`,
	upsertProcessing: `
		INSERT INTO request_processing_data (so_request_id, name, value, tag, grouping_id)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			value = VALUES(value),
			tag = VALUES(tag),
			grouping_id = VALUES(grouping_id)
	`,
	selectForUpdate: `SELECT data FROM infra_active_requests WHERE request_id = ? FOR UPDATE`,
}

// NewMySQLStore creates a new MySQL-backed store.
//
// The DSN format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Example:
//
//	store, err := NewMySQLStore("so:secret@tcp(localhost:3306)/requestdb")
//
// Never hardcode credentials; read the DSN from the environment.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	core, err := newSQLStore(ctx, db, mysqlDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &MySQLStore{sqlStore: core}, nil
}
