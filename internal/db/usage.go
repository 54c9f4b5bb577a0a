package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UsageToday returns how many calls a metered source has made today.
// Implements sources.UsageLedger.
func (db *DB) UsageToday(ctx context.Context, source string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx,
		`SELECT call_count FROM api_usage WHERE source = $1 AND date = CURRENT_DATE`,
		source,
	).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get usage: %w", err)
	}
	return count, nil
}

// AddUsage records calls against a metered source's daily ledger row.
func (db *DB) AddUsage(ctx context.Context, source string, calls int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO api_usage (source, date, call_count)
		 VALUES ($1, CURRENT_DATE, $2)
		 ON CONFLICT (source, date) DO UPDATE SET call_count = api_usage.call_count + $2`,
		source, calls,
	)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}
