package migration

import (
	"context"

	"seodash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Dialect selects the SQL flavour a migration is written in
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	dialect Dialect
}

// NewRunner creates a new migration runner for dialect
func NewRunner(dialect Dialect) *MigrationRunner {
	return &MigrationRunner{dialect: dialect}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSearchDataCacheTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create search_data_cache table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSearchDataCacheTable(ctx context.Context, db *sqlx.DB) error {
	var ddl string
	switch r.dialect {
	case DialectPostgres:
		ddl = `
		CREATE TABLE IF NOT EXISTS search_data_cache (
			storage_key VARCHAR(100) PRIMARY KEY,
			payload JSONB NOT NULL,
			record_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`
	case DialectSQLite:
		ddl = `
		CREATE TABLE IF NOT EXISTS search_data_cache (
			storage_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			record_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`
	default:
		return errors.ConfigInvalid("unknown migration dialect: " + string(r.dialect))
	}

	_, err := db.ExecContext(ctx, ddl)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_search_data_cache_updated_at ON search_data_cache(updated_at)",
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
