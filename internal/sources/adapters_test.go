package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fursa/internal/classify"
)

func TestGreenhouse_MapsNestedLocationAndNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/boards/acme/jobs", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("content"))
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": 4001, "title": "Senior Product Manager", "location": {"name": "Berlin, Germany"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/4001", "updated_at": "2024-03-10T08:00:00Z"},
			{"id": 4002, "title": "Software Engineer", "location": {"name": "Berlin"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/4002"}
		]}`))
	}))
	defer server.Close()

	adapter := NewGreenhouse(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, SourceGreenhouse, job.Source)
	assert.Equal(t, "4001", job.SourceID)
	assert.Equal(t, "Berlin, Germany", job.LocationRaw)
	assert.Equal(t, classify.RegionEU, job.GeoRegion)
	assert.Equal(t, classify.SenioritySenior, job.Seniority)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, "2024-03-10", job.PostedDate.Format("2006-01-02"))
}

func TestGreenhouse_NoBoardYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewGreenhouse(server.Client())
	adapter.BaseURL = server.URL

	assert.Empty(t, adapter.Fetch(context.Background(), "ghost", "Ghost"))
}

func TestGreenhouse_ServerErrorYieldsEmptyNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewGreenhouse(server.Client())
	adapter.BaseURL = server.URL

	assert.Empty(t, adapter.Fetch(context.Background(), "flaky", "Flaky"))
}

func TestLever_MapsListPayloadAndEpochMillis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/postings/acme", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": "ab-12", "text": "Staff Product Manager", "categories": {"location": "Remote - US"}, "hostedUrl": "https://jobs.lever.co/acme/ab-12", "createdAt": 1710028800000},
			{"id": "ab-13", "text": "Product Designer", "categories": {"location": "NYC"}, "hostedUrl": "https://jobs.lever.co/acme/ab-13"}
		]`))
	}))
	defer server.Close()

	adapter := NewLever(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "ab-12", job.SourceID)
	assert.Equal(t, classify.RegionRemote, job.GeoRegion)
	assert.Equal(t, classify.SeniorityStaff, job.Seniority)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, "2024-03-10", job.PostedDate.Format("2006-01-02"))
}

func TestLever_FallsBackToAllLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "x", "text": "Product Manager", "categories": {"allLocations": ["London"]}, "hostedUrl": "https://jobs.lever.co/acme/x"}]`))
	}))
	defer server.Close()

	adapter := NewLever(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 1)
	assert.Equal(t, "London", jobs[0].LocationRaw)
	assert.Nil(t, jobs[0].PostedDate)
}

func TestAshby_PrefersPublishedAtAndFlatLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posting-api/job-board/acme", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": "u-1", "title": "Group Product Manager", "locationName": "Stockholm", "jobUrl": "https://jobs.ashbyhq.com/acme/u-1", "publishedAt": "2024-02-01", "updatedAt": "2024-03-01"}
		]}`))
	}))
	defer server.Close()

	adapter := NewAshby(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 1)
	assert.Equal(t, "Stockholm", jobs[0].LocationRaw)
	require.NotNil(t, jobs[0].PostedDate)
	assert.Equal(t, "2024-02-01", jobs[0].PostedDate.Format("2006-01-02"))
}

func TestSmartRecruiters_RemoteFlagAndRefFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/companies/acme/postings", r.URL.Path)
		_, _ = w.Write([]byte(`{"content": [
			{"id": "900", "name": "Product Manager", "location": {"remote": true}},
			{"id": "901", "name": "Principal Product Manager", "location": {"city": "Munich", "country": "Germany"}, "ref": "https://jobs.smartrecruiters.com/acme/901-x"}
		]}`))
	}))
	defer server.Close()

	adapter := NewSmartRecruiters(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 2)

	assert.Equal(t, "Remote", jobs[0].LocationRaw)
	assert.Equal(t, "https://jobs.smartrecruiters.com/acme/900", jobs[0].URL)

	assert.Equal(t, "Munich, Germany", jobs[1].LocationRaw)
	assert.Equal(t, "https://jobs.smartrecruiters.com/acme/901-x", jobs[1].URL)
}

func TestTeamtailor_WrappedPayloadAndKebabFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/jobs.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": 77, "title": "Product Owner", "human-location": "Copenhagen", "apply-url": "", "career-page-url": "https://acme.teamtailor.com/jobs/77", "created-at": "2024-01-20T09:00:00Z"}
		]}`))
	}))
	defer server.Close()

	adapter := NewTeamtailor(server.Client())
	adapter.BaseURLTemplate = server.URL + "/%s"

	jobs := adapter.Fetch(context.Background(), "acme", "Acme")
	require.Len(t, jobs, 1)
	assert.Equal(t, "77", jobs[0].SourceID)
	assert.Equal(t, "Copenhagen", jobs[0].LocationRaw)
	assert.Equal(t, "https://acme.teamtailor.com/jobs/77", jobs[0].URL)
}

func TestRemotive_ForcesRemoteRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/remote-jobs", r.URL.Path)
		assert.Equal(t, "product", r.URL.Query().Get("category"))
		_, _ = w.Write([]byte(`{"jobs": [
			{"id": 55, "title": "Product Manager", "company_name": "Acme", "url": "https://remotive.com/jobs/55", "candidate_required_location": "Europe", "publication_date": "2024-03-01T00:00:00"},
			{"id": 56, "title": "Product Manager", "company_name": "NoURL", "url": ""}
		]}`))
	}))
	defer server.Close()

	adapter := NewRemotive(server.Client())
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background())
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].CompanyName)
	// "Europe" would classify as EU; the feed is remote-only by definition.
	assert.Equal(t, classify.RegionRemote, jobs[0].GeoRegion)
}

func TestAdzuna_UnconfiguredSkips(t *testing.T) {
	adapter := NewAdzuna(nil, "", "")
	assert.False(t, adapter.Configured())
	assert.Empty(t, adapter.Fetch(context.Background()))
}

func TestAdzuna_DeduplicatesAcrossPages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Return the same listing on every page of every sweep cell; the
		// second page being identical also exercises the per-page loop.
		_, _ = w.Write([]byte(`{"results": [
			{"id": "dup-1", "title": "Product Manager", "company": {"display_name": "Acme"}, "location": {"display_name": "London, UK"}, "redirect_url": "https://adzuna.example/dup-1", "created": "2024-02-02"}
		]}`))
	}))
	defer server.Close()

	adapter := NewAdzuna(server.Client(), "id", "key")
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background())
	require.Len(t, jobs, 1)
	assert.Equal(t, "dup-1", jobs[0].SourceID)
	assert.Equal(t, classify.RegionUK, jobs[0].GeoRegion)
	assert.Greater(t, calls, 1)
}

// memoryLedger is an in-memory UsageLedger for adapter tests.
type memoryLedger struct {
	counts map[string]int
}

func newMemoryLedger() *memoryLedger { return &memoryLedger{counts: map[string]int{}} }

func (m *memoryLedger) UsageToday(_ context.Context, source string) (int, error) {
	return m.counts[source], nil
}

func (m *memoryLedger) AddUsage(_ context.Context, source string, calls int) error {
	m.counts[source] += calls
	return nil
}

func TestLinkedIn_RecordsUsageAndFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"job": [
			{"job_title": "Senior Product Manager", "company": "Acme", "location": "Amsterdam, Netherlands", "linkedin_job_url_cleaned": "https://linkedin.com/jobs/view/1"}
		]}`))
	}))
	defer server.Close()

	ledger := newMemoryLedger()
	adapter := NewLinkedIn(server.Client(), "secret", 100, ledger)
	adapter.BaseURL = server.URL

	jobs := adapter.Fetch(context.Background())
	require.NotEmpty(t, jobs)
	assert.Equal(t, "https://linkedin.com/jobs/view/1", jobs[0].SourceID)
	assert.Equal(t, len(linkedInQueries), ledger.counts[SourceLinkedIn])
}

func TestLinkedIn_DailyCapStopsSweep(t *testing.T) {
	ledger := newMemoryLedger()
	ledger.counts[SourceLinkedIn] = 100

	adapter := NewLinkedIn(nil, "secret", 100, ledger)
	assert.Empty(t, adapter.Fetch(context.Background()))
	// No calls made, no usage added.
	assert.Equal(t, 100, ledger.counts[SourceLinkedIn])
}
