// Package db provides PostgreSQL persistence for companies, jobs, and the
// external-API usage ledger.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schema is idempotent DDL for the three tables the aggregator owns.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		homepage_url TEXT,
		career_url TEXT,
		career_url_provenance TEXT NOT NULL DEFAULT 'auto',
		tier INT NOT NULL DEFAULT 2,
		size TEXT,
		vertical TEXT,
		geo_primary TEXT,
		ats_platform TEXT,
		ats_slug TEXT,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		last_scraped TIMESTAMPTZ,
		page_fingerprint TEXT,
		scrape_interval_days INT NOT NULL DEFAULT 1,
		last_discovery_attempt TIMESTAMPTZ,
		scrape_status TEXT NOT NULL DEFAULT 'unset'
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		company_id UUID REFERENCES companies(id) ON DELETE SET NULL,
		company_name TEXT NOT NULL,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		title TEXT NOT NULL,
		location_raw TEXT NOT NULL DEFAULT '',
		geo_region TEXT NOT NULL DEFAULT '',
		seniority TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		posted_date DATE,
		first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		search_vector TSVECTOR,
		UNIQUE (source, source_id)
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_search_idx ON jobs USING GIN (search_vector)`,
	`CREATE INDEX IF NOT EXISTS jobs_active_last_seen_idx ON jobs (active, last_seen)`,
	`CREATE TABLE IF NOT EXISTS api_usage (
		source TEXT NOT NULL,
		date DATE NOT NULL,
		call_count INT NOT NULL DEFAULT 0,
		UNIQUE (source, date)
	)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
