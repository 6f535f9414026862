package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"seodash/domain/searchdata"
	"seodash/internal/migration"
	"seodash/ports"
)

// Connect opens the postgres database and runs migrations
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migration.NewRunner(migration.DialectPostgres).Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return db, nil
}

// RecordMirror persists the record collection as one JSONB document
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
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (storage_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			record_count = EXCLUDED.record_count,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query, r.key, string(payload), len(records), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}

	return nil
}

// Load returns the stored collection, or nil when nothing is stored
func (r *RecordMirror) Load(ctx context.Context) ([]searchdata.Record, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM search_data_cache WHERE storage_key = $1`, r.key).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	var records []searchdata.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}

	return records, nil
}

// Delete removes the stored collection
func (r *RecordMirror) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM search_data_cache WHERE storage_key = $1`, r.key)
	if err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
