package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"seodash/domain/searchdata"
	"seodash/internal/migration"
	"seodash/ports"
)

// connPragmas are applied by the driver to every pooled connection
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(10000)",
	"synchronous(NORMAL)",
}

// Open opens a local SQLite database with the standard pragmas and runs migrations
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migration.NewRunner(migration.DialectSQLite).Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return db, nil
}

// dsn appends the connection pragmas as _pragma query parameters
func dsn(path string) string {
	params := make([]string, len(connPragmas))
	for i, pragma := range connPragmas {
		params[i] = "_pragma=" + pragma
	}
	return path + "?" + strings.Join(params, "&")
}

// RecordMirror persists the record collection as one JSON document in a
// local database, the server-side counterpart of browser local storage
type RecordMirror struct {
	db  *sqlx.DB
	key string
}

// NewRecordMirror creates a new mirror stored under ports.MirrorKey
func NewRecordMirror(db *sqlx.DB) *RecordMirror {
	return &RecordMirror{db: db, key: ports.MirrorKey}
}

// Save replaces the stored collection
func (r *RecordMirror) Save(ctx context.Context, records []searchdata.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	query := `
		INSERT INTO search_data_cache (storage_key, payload, record_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET
			payload = excluded.payload,
			record_count = excluded.record_count,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query, r.key, string(payload), len(records), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	return nil
}

// Load returns the stored collection, or nil when nothing is stored
func (r *RecordMirror) Load(ctx context.Context) ([]searchdata.Record, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM search_data_cache WHERE storage_key = ?`, r.key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	var records []searchdata.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}

	return records, nil
}

// Delete removes the stored collection
func (r *RecordMirror) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM search_data_cache WHERE storage_key = ?`, r.key); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
