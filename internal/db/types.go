package db

import (
	"time"

	"github.com/google/uuid"
)

// Career-URL provenance values. Only auto-provenance URLs may be cleared by
// failure handling; curated and manual URLs are protected.
const (
	ProvenanceAuto        = "auto"
	ProvenanceCuratedList = "curated-list"
	ProvenanceManual      = "manual"
)

// Scrape-health status values for a company. There is no terminal state;
// every run re-evaluates.
const (
	StatusUnset         = "unset"
	StatusOK            = "ok"
	StatusEmpty         = "empty"
	StatusShellDetected = "shell_detected"
	StatusHTTPError     = "http_error"
	StatusTimeout       = "timeout"
)

// Company is a tracked employer: its discovered URLs, scrape bookkeeping,
// and the provenance tag guarding automated URL resets.
type Company struct {
	ID                   uuid.UUID
	Name                 string
	HomepageURL          *string
	CareerURL            *string
	CareerURLProvenance  string
	Tier                 int
	Size                 *string
	Vertical             *string
	GeoPrimary           *string
	ATSPlatform          *string
	ATSSlug              *string
	Enabled              bool
	LastScraped          *time.Time
	PageFingerprint      *string
	ScrapeIntervalDays   int
	LastDiscoveryAttempt *time.Time
	ScrapeStatus         string
}

// JobRow is a persisted job listing. (Source, SourceID) is the global
// reconciliation key.
type JobRow struct {
	ID          uuid.UUID
	CompanyID   *uuid.UUID
	CompanyName string
	Source      string
	SourceID    string
	Title       string
	LocationRaw string
	GeoRegion   string
	Seniority   string
	URL         string
	PostedDate  *time.Time
	FirstSeen   time.Time
	LastSeen    time.Time
	Active      bool
}
