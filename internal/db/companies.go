package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, name, homepage_url, career_url, career_url_provenance,
	tier, size, vertical, geo_primary, ats_platform, ats_slug, enabled,
	last_scraped, page_fingerprint, scrape_interval_days, last_discovery_attempt,
	scrape_status`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.Name, &c.HomepageURL, &c.CareerURL, &c.CareerURLProvenance,
		&c.Tier, &c.Size, &c.Vertical, &c.GeoPrimary, &c.ATSPlatform, &c.ATSSlug, &c.Enabled,
		&c.LastScraped, &c.PageFingerprint, &c.ScrapeIntervalDays, &c.LastDiscoveryAttempt,
		&c.ScrapeStatus)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) queryCompanies(ctx context.Context, query string, args ...any) ([]Company, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	return companies, nil
}

// GetCompanyByName retrieves a company by its unique name
func (db *DB) GetCompanyByName(ctx context.Context, name string) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name = $1`, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// CreateCompany inserts a company by name, returning the existing row when
// the name is already present.
func (db *DB) CreateCompany(ctx context.Context, name string, tier int) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (name, tier)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET tier = EXCLUDED.tier
		 RETURNING `+companyColumns,
		name, tier,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return c, nil
}

// ListMissingHomepage returns enabled companies without a homepage URL.
func (db *DB) ListMissingHomepage(ctx context.Context, limit int) ([]Company, error) {
	return db.queryCompanies(ctx,
		`SELECT `+companyColumns+`
		 FROM companies
		 WHERE enabled AND homepage_url IS NULL
		 ORDER BY name
		 LIMIT $1`,
		limit,
	)
}

// ListMissingCareerURL returns enabled companies without a career URL.
func (db *DB) ListMissingCareerURL(ctx context.Context, limit int) ([]Company, error) {
	return db.queryCompanies(ctx,
		`SELECT `+companyColumns+`
		 FROM companies
		 WHERE enabled AND career_url IS NULL
		 ORDER BY name
		 LIMIT $1`,
		limit,
	)
}

// ListDue returns the rolling extraction window: enabled companies with a
// career URL whose last scrape is absent or older than their scrape
// interval, stalest first.
func (db *DB) ListDue(ctx context.Context, limit int) ([]Company, error) {
	return db.queryCompanies(ctx,
		`SELECT `+companyColumns+`
		 FROM companies
		 WHERE enabled
		   AND career_url IS NOT NULL
		   AND (last_scraped IS NULL
		        OR last_scraped < NOW() - scrape_interval_days * INTERVAL '1 day')
		 ORDER BY last_scraped ASC NULLS FIRST
		 LIMIT $1`,
		limit,
	)
}

// SetHomepageURL records a discovered homepage URL.
func (db *DB) SetHomepageURL(ctx context.Context, id uuid.UUID, homepageURL string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE companies SET homepage_url = $1 WHERE id = $2`,
		homepageURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set homepage URL: %w", err)
	}
	return nil
}

// SetCareerURL records a career URL with its provenance tag.
func (db *DB) SetCareerURL(ctx context.Context, id uuid.UUID, careerURL, provenance string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE companies SET career_url = $1, career_url_provenance = $2 WHERE id = $3`,
		careerURL, provenance, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set career URL: %w", err)
	}
	return nil
}

// RecordScrape updates a company's scrape bookkeeping after one extraction
// attempt, whatever the outcome. An empty fingerprint leaves the stored one
// untouched so UNCHANGED keeps working across failed runs.
func (db *DB) RecordScrape(ctx context.Context, id uuid.UUID, status, fingerprint string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE companies SET
		     scrape_status = $1,
		     page_fingerprint = COALESCE(NULLIF($2, ''), page_fingerprint),
		     last_scraped = NOW()
		 WHERE id = $3`,
		status, fingerprint, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record scrape: %w", err)
	}
	return nil
}

// ResetCareerURL clears an auto-provenance career URL so the next run
// rediscovers it, stamping the discovery-attempt cooldown. The provenance
// guard lives in SQL so no caller can clear a curated or manual URL.
func (db *DB) ResetCareerURL(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE companies SET
		     career_url = NULL,
		     page_fingerprint = NULL,
		     last_discovery_attempt = NOW()
		 WHERE id = $1 AND career_url_provenance = $2`,
		id, ProvenanceAuto,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reset career URL: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// SetATSHint records a curated ATS platform and board slug for a company,
// letting career discovery try the board URL before anything else.
func (db *DB) SetATSHint(ctx context.Context, id uuid.UUID, platform, slug string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE companies SET ats_platform = $1, ats_slug = $2 WHERE id = $3`,
		platform, slug, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set ATS hint: %w", err)
	}
	return nil
}

// StampDiscoveryAttempt records that a discovery flow ran for a company,
// successful or not, starting the rediscovery cooldown.
func (db *DB) StampDiscoveryAttempt(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE companies SET last_discovery_attempt = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp discovery attempt: %w", err)
	}
	return nil
}

// CooldownElapsed reports whether a company's last discovery attempt is
// absent or older than the given cooldown.
func CooldownElapsed(c *Company, cooldown time.Duration, now time.Time) bool {
	if c.LastDiscoveryAttempt == nil {
		return true
	}
	return now.Sub(*c.LastDiscoveryAttempt) >= cooldown
}
