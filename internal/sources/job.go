// Package sources contains the source adapters that translate vendor job
// APIs into canonical job records, and the ATS router that dispatches a
// career URL to the matching adapter.
package sources

import (
	"time"

	"github.com/jonathan/fursa/internal/classify"
)

// Source identifiers, one per adapter. The (source, source_id) pair is the
// global reconciliation key for a job.
const (
	SourceGreenhouse     = "greenhouse"
	SourceLever          = "lever"
	SourceAshby          = "ashby"
	SourceSmartRecruiter = "smartrecruiters"
	SourceTeamtailor     = "teamtailor"
	SourceRemotive       = "remotive"
	SourceAdzuna         = "adzuna"
	SourceLinkedIn       = "proxycurl"
	SourceCustom         = "custom"
)

// Job is the canonical job record every adapter and the page-text extractor
// produce. Region and seniority are derived at construction time via the
// classify package.
type Job struct {
	SourceID    string
	Source      string
	Title       string
	CompanyName string
	LocationRaw string
	URL         string
	PostedDate  *time.Time
	GeoRegion   classify.Region
	Seniority   classify.Seniority
}

// NewJob builds a canonical record, deriving region and seniority from the
// raw title and location.
func NewJob(source, sourceID, title, companyName, locationRaw, url string, postedDate *time.Time) Job {
	return Job{
		SourceID:    sourceID,
		Source:      source,
		Title:       title,
		CompanyName: companyName,
		LocationRaw: locationRaw,
		URL:         url,
		PostedDate:  postedDate,
		GeoRegion:   classify.ClassifyRegion(locationRaw),
		Seniority:   classify.ClassifySeniority(title),
	}
}

// postedAt converts a raw vendor date value into a *time.Time, or nil when
// the value is absent or unparseable.
func postedAt(raw any) *time.Time {
	if t, ok := classify.NormalizeDate(raw); ok {
		return &t
	}
	return nil
}
