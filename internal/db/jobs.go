package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/fursa/internal/sources"
)

// UpsertJobs reconciles extracted jobs into the store, keyed on
// (source, source_id). Updates refresh last_seen, force active, and rebuild
// the search vector; first_seen is never touched. Jobs with an empty apply
// URL or source ID are skipped. Returns the number of rows written.
func (db *DB) UpsertJobs(ctx context.Context, companyID *uuid.UUID, jobs []sources.Job) (int, error) {
	written := 0
	for _, job := range jobs {
		if job.URL == "" || job.SourceID == "" {
			continue
		}

		_, err := db.pool.Exec(ctx,
			`INSERT INTO jobs (company_id, company_name, source, source_id, title,
			                   location_raw, geo_region, seniority, url, posted_date, search_vector)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			         to_tsvector('english', $5 || ' ' || $2))
			 ON CONFLICT (source, source_id) DO UPDATE SET
			     company_id = COALESCE(EXCLUDED.company_id, jobs.company_id),
			     company_name = EXCLUDED.company_name,
			     title = EXCLUDED.title,
			     location_raw = EXCLUDED.location_raw,
			     geo_region = EXCLUDED.geo_region,
			     seniority = EXCLUDED.seniority,
			     url = EXCLUDED.url,
			     posted_date = COALESCE(EXCLUDED.posted_date, jobs.posted_date),
			     last_seen = NOW(),
			     active = TRUE,
			     search_vector = EXCLUDED.search_vector`,
			companyID, job.CompanyName, job.Source, job.SourceID, job.Title,
			job.LocationRaw, string(job.GeoRegion), string(job.Seniority), job.URL, job.PostedDate,
		)
		if err != nil {
			return written, fmt.Errorf("failed to upsert job %s/%s: %w", job.Source, job.SourceID, err)
		}
		written++
	}
	return written, nil
}

// MarkStaleInactive flags every active job not re-observed since the cutoff
// as inactive. Rows are kept, not deleted; history is preserved.
func (db *DB) MarkStaleInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs SET active = FALSE WHERE active AND last_seen < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale jobs inactive: %w", err)
	}
	return result.RowsAffected(), nil
}

// BackfillSearchVectors fills in any missing search-index entries.
func (db *DB) BackfillSearchVectors(ctx context.Context) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs
		 SET search_vector = to_tsvector('english', title || ' ' || company_name)
		 WHERE search_vector IS NULL`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill search vectors: %w", err)
	}
	return result.RowsAffected(), nil
}

// GetJobBySourceID retrieves one job by its reconciliation key.
func (db *DB) GetJobBySourceID(ctx context.Context, source, sourceID string) (*JobRow, error) {
	var j JobRow
	err := db.pool.QueryRow(ctx,
		`SELECT id, company_id, company_name, source, source_id, title, location_raw,
		        geo_region, seniority, url, posted_date, first_seen, last_seen, active
		 FROM jobs WHERE source = $1 AND source_id = $2`,
		source, sourceID,
	).Scan(&j.ID, &j.CompanyID, &j.CompanyName, &j.Source, &j.SourceID, &j.Title, &j.LocationRaw,
		&j.GeoRegion, &j.Seniority, &j.URL, &j.PostedDate, &j.FirstSeen, &j.LastSeen, &j.Active)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}
