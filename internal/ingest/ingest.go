// Package ingest contains the ingestion orchestrator: the phased,
// bounded-concurrency driver that sequences URL discovery, feed ingestion,
// career-page extraction, reconciliation, and maintenance over the whole
// company set once per invocation.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fursa/internal/classify"
	"github.com/jonathan/fursa/internal/db"
	"github.com/jonathan/fursa/internal/discover"
	"github.com/jonathan/fursa/internal/extract"
	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/sources"
)

// Store is the persistence surface the orchestrator needs. Implemented by
// db.DB; faked in tests.
type Store interface {
	ListMissingHomepage(ctx context.Context, limit int) ([]db.Company, error)
	ListMissingCareerURL(ctx context.Context, limit int) ([]db.Company, error)
	ListDue(ctx context.Context, limit int) ([]db.Company, error)
	SetHomepageURL(ctx context.Context, id uuid.UUID, homepageURL string) error
	SetCareerURL(ctx context.Context, id uuid.UUID, careerURL, provenance string) error
	RecordScrape(ctx context.Context, id uuid.UUID, status, fingerprint string) error
	ResetCareerURL(ctx context.Context, id uuid.UUID) (bool, error)
	StampDiscoveryAttempt(ctx context.Context, id uuid.UUID) error
	UpsertJobs(ctx context.Context, companyID *uuid.UUID, jobs []sources.Job) (int, error)
	MarkStaleInactive(ctx context.Context, cutoff time.Time) (int64, error)
	BackfillSearchVectors(ctx context.Context) (int64, error)
}

// HomepageFinder resolves company names to validated homepage URLs.
type HomepageFinder interface {
	Discover(ctx context.Context, names []string) map[string]string
}

// CareerFinder resolves a prospect to a validated career-page URL.
type CareerFinder interface {
	Discover(ctx context.Context, p discover.Prospect) (string, bool)
}

// Extractor runs the career-page extraction state machine for one company.
type Extractor interface {
	Run(ctx context.Context, careerURL, companyName, prevFingerprint string) (*extract.Result, error)
}

// ATSFallback is the router used when a career page turns out to be a
// client-rendered shell.
type ATSFallback interface {
	TryFallback(ctx context.Context, careerURL, companyName string) ([]sources.Job, bool)
}

// Feed is a global job feed independent of any one company's career page.
type Feed interface {
	Fetch(ctx context.Context) []sources.Job
}

// Summary is what one orchestrator run reports back. The continent
// breakdown is reporting-only, derived from raw locations at run time.
type Summary struct {
	HomepagesFound  int
	CareerURLsFound int
	FeedJobs        int
	Companies       int
	JobsUpserted    int
	StatusCounts    map[string]int
	JobsByContinent map[string]int
	JobsDeactivated int64
	Elapsed         time.Duration
}

func (s *Summary) tallyContinents(jobs []sources.Job) {
	for _, job := range jobs {
		if job.URL == "" || job.SourceID == "" {
			continue
		}
		continent := classify.ClassifyContinent(job.LocationRaw, job.GeoRegion)
		s.JobsByContinent[string(continent)]++
	}
}

// Orchestrator wires the pipeline together. All collaborators are injected;
// zero-value limits fall back to the documented defaults.
type Orchestrator struct {
	Store     Store
	Homepages HomepageFinder
	Careers   CareerFinder
	Extractor Extractor
	Router    ATSFallback
	Feeds     []Feed

	Concurrency         int
	RollingWindow       int
	DiscoveryBatch      int
	ScrapeDelay         time.Duration
	RediscoveryCooldown time.Duration
	InactiveAfter       time.Duration

	// Clock and Sleep are injectable for tests.
	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

// Default limits for a run.
const (
	DefaultConcurrency         = 5
	DefaultRollingWindow       = 200
	DefaultDiscoveryBatch      = 200
	DefaultScrapeDelay         = 2 * time.Second
	DefaultRediscoveryCooldown = 30 * 24 * time.Hour
	DefaultInactiveAfter       = 7 * 24 * time.Hour
)

func (o *Orchestrator) defaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RollingWindow <= 0 {
		o.RollingWindow = DefaultRollingWindow
	}
	if o.DiscoveryBatch <= 0 {
		o.DiscoveryBatch = DefaultDiscoveryBatch
	}
	if o.ScrapeDelay <= 0 {
		o.ScrapeDelay = DefaultScrapeDelay
	}
	if o.RediscoveryCooldown <= 0 {
		o.RediscoveryCooldown = DefaultRediscoveryCooldown
	}
	if o.InactiveAfter <= 0 {
		o.InactiveAfter = DefaultInactiveAfter
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = func(ctx context.Context, d time.Duration) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
			}
		}
	}
}

// Run executes the four phases in order. Phase failures are isolated; only
// a failure to obtain a company worklist aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	o.defaults()
	started := o.Clock()
	summary := &Summary{
		StatusCounts:    make(map[string]int),
		JobsByContinent: make(map[string]int),
	}

	if err := o.discoverHomepages(ctx, summary); err != nil {
		return nil, err
	}
	if err := o.discoverCareerURLs(ctx, summary); err != nil {
		return nil, err
	}
	o.ingestFeeds(ctx, summary)
	if err := o.extractCompanies(ctx, summary); err != nil {
		return nil, err
	}
	o.maintain(ctx, summary)

	summary.Elapsed = o.Clock().Sub(started)
	return summary, nil
}

// discoverHomepages fills in missing homepage URLs for enabled companies.
func (o *Orchestrator) discoverHomepages(ctx context.Context, summary *Summary) error {
	companies, err := o.Store.ListMissingHomepage(ctx, o.DiscoveryBatch)
	if err != nil {
		return fmt.Errorf("failed to list companies missing a homepage: %w", err)
	}
	if len(companies) == 0 {
		return nil
	}

	byName := make(map[string]uuid.UUID, len(companies))
	names := make([]string, 0, len(companies))
	for _, c := range companies {
		byName[c.Name] = c.ID
		names = append(names, c.Name)
	}

	for name, homepageURL := range o.Homepages.Discover(ctx, names) {
		id, ok := byName[name]
		if !ok {
			continue
		}
		if err := o.Store.SetHomepageURL(ctx, id, homepageURL); err != nil {
			log.Printf("[ingest] %s: failed to store homepage: %v", name, err)
			continue
		}
		summary.HomepagesFound++
	}
	log.Printf("[ingest] homepage discovery: %d/%d found", summary.HomepagesFound, len(companies))
	return nil
}

// discoverCareerURLs fills in missing career URLs, using freshly discovered
// homepages where available. Every attempt stamps the cooldown clock,
// successful or not.
func (o *Orchestrator) discoverCareerURLs(ctx context.Context, summary *Summary) error {
	companies, err := o.Store.ListMissingCareerURL(ctx, o.DiscoveryBatch)
	if err != nil {
		return fmt.Errorf("failed to list companies missing a career URL: %w", err)
	}

	for _, c := range companies {
		prospect := discover.Prospect{Name: c.Name}
		if c.HomepageURL != nil {
			prospect.HomepageURL = *c.HomepageURL
		}
		if c.ATSPlatform != nil && c.ATSSlug != nil {
			prospect.Hint = &discover.Hint{
				Platform: sources.Platform(*c.ATSPlatform),
				Slug:     *c.ATSSlug,
			}
		}

		careerURL, found := o.Careers.Discover(ctx, prospect)
		if found {
			if err := o.Store.SetCareerURL(ctx, c.ID, careerURL, db.ProvenanceAuto); err != nil {
				log.Printf("[ingest] %s: failed to store career URL: %v", c.Name, err)
			} else {
				summary.CareerURLsFound++
			}
		}
		if err := o.Store.StampDiscoveryAttempt(ctx, c.ID); err != nil {
			log.Printf("[ingest] %s: failed to stamp discovery attempt: %v", c.Name, err)
		}
	}
	if len(companies) > 0 {
		log.Printf("[ingest] career discovery: %d/%d found", summary.CareerURLsFound, len(companies))
	}
	return nil
}

// ingestFeeds pulls the global job feeds and reconciles their listings.
// Feed jobs have no owning company row.
func (o *Orchestrator) ingestFeeds(ctx context.Context, summary *Summary) {
	for _, feed := range o.Feeds {
		jobs := feed.Fetch(ctx)
		if len(jobs) == 0 {
			continue
		}
		written, err := o.Store.UpsertJobs(ctx, nil, jobs)
		if err != nil {
			log.Printf("[ingest] feed upsert failed: %v", err)
			continue
		}
		summary.FeedJobs += written
		summary.tallyContinents(jobs)
	}
}

// extractCompanies runs the rolling extraction window under a bounded
// worker pool with a fixed inter-company delay per worker. Every company
// task is isolated; one failure never cancels siblings.
func (o *Orchestrator) extractCompanies(ctx context.Context, summary *Summary) error {
	due, err := o.Store.ListDue(ctx, o.RollingWindow)
	if err != nil {
		return fmt.Errorf("failed to list due companies: %w", err)
	}
	summary.Companies = len(due)

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(o.Concurrency)

	for _, company := range due {
		company := company // per-iteration copy; module compiles under go 1.21 loop semantics
		g.Go(func() error {
			status, written, jobs := o.processCompany(ctx, company)
			mu.Lock()
			summary.StatusCounts[status]++
			summary.JobsUpserted += written
			summary.tallyContinents(jobs)
			mu.Unlock()
			o.Sleep(ctx, o.ScrapeDelay)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

// processCompany runs extraction for one company and owns its status
// transition. The scrape bookkeeping is updated under every outcome so no
// company is retried prematurely.
func (o *Orchestrator) processCompany(ctx context.Context, company db.Company) (status string, written int, upserted []sources.Job) {
	careerURL := *company.CareerURL
	prevFingerprint := ""
	if company.PageFingerprint != nil {
		prevFingerprint = *company.PageFingerprint
	}

	result, err := o.Extractor.Run(ctx, careerURL, company.Name, prevFingerprint)
	if err != nil {
		status = o.handleFailure(ctx, company, err)
		if recErr := o.Store.RecordScrape(ctx, company.ID, status, ""); recErr != nil {
			log.Printf("[ingest] %s: failed to record scrape: %v", company.Name, recErr)
		}
		return status, 0, nil
	}

	fingerprint := result.Fingerprint
	switch result.Status {
	case extract.StatusUnchanged:
		// No information gained; keep the prior status.
		status = company.ScrapeStatus

	case extract.StatusShellDetected:
		status = db.StatusShellDetected
		if jobs, applicable := o.Router.TryFallback(ctx, careerURL, company.Name); applicable {
			n, err := o.Store.UpsertJobs(ctx, &company.ID, jobs)
			if err != nil {
				log.Printf("[ingest] %s: fallback upsert failed: %v", company.Name, err)
			} else if n > 0 {
				status = db.StatusOK
				written = n
				upserted = jobs
			}
		}

	case extract.StatusOK:
		n, err := o.Store.UpsertJobs(ctx, &company.ID, result.Jobs)
		if err != nil {
			// A persistence fault is not a page fault. Keep the prior status
			// and withhold the fingerprint so the next run retries the upsert
			// instead of short-circuiting on UNCHANGED.
			log.Printf("[ingest] %s: upsert failed: %v", company.Name, err)
			status = company.ScrapeStatus
			fingerprint = ""
		} else if n > 0 {
			status = db.StatusOK
			written = n
			upserted = result.Jobs
		} else {
			status = db.StatusEmpty
		}
	}

	if err := o.Store.RecordScrape(ctx, company.ID, status, fingerprint); err != nil {
		log.Printf("[ingest] %s: failed to record scrape: %v", company.Name, err)
	}
	return status, written, upserted
}

// handleFailure maps an extraction error to a company status and applies
// the provenance-guarded URL reset on dead resources.
func (o *Orchestrator) handleFailure(ctx context.Context, company db.Company, err error) string {
	log.Printf("[ingest] %s: extraction failed: %v", company.Name, err)

	if fetch.IsDeadResource(err) {
		o.maybeResetCareerURL(ctx, company)
		return db.StatusHTTPError
	}
	if isTimeout(err) {
		return db.StatusTimeout
	}
	return db.StatusHTTPError
}

// maybeResetCareerURL clears a dead career URL so the next run rediscovers
// it, but only for auto-provenance URLs and only once the rediscovery
// cooldown has elapsed. Curated and manual URLs are never touched.
func (o *Orchestrator) maybeResetCareerURL(ctx context.Context, company db.Company) {
	if company.CareerURLProvenance != db.ProvenanceAuto {
		return
	}
	if !db.CooldownElapsed(&company, o.RediscoveryCooldown, o.Clock()) {
		return
	}
	reset, err := o.Store.ResetCareerURL(ctx, company.ID)
	if err != nil {
		log.Printf("[ingest] %s: failed to reset career URL: %v", company.Name, err)
		return
	}
	if reset {
		log.Printf("[ingest] %s: dead career URL cleared for rediscovery", company.Name)
	}
}

// maintain marks stale jobs inactive and backfills missing search-index
// entries. Failures here are logged, never fatal.
func (o *Orchestrator) maintain(ctx context.Context, summary *Summary) {
	cutoff := o.Clock().Add(-o.InactiveAfter)
	deactivated, err := o.Store.MarkStaleInactive(ctx, cutoff)
	if err != nil {
		log.Printf("[ingest] maintenance: failed to mark stale jobs: %v", err)
	} else {
		summary.JobsDeactivated = deactivated
	}

	if _, err := o.Store.BackfillSearchVectors(ctx); err != nil {
		log.Printf("[ingest] maintenance: failed to backfill search vectors: %v", err)
	}
}

// isTimeout reports whether an error chain ends in a timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
