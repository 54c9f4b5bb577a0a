package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// UsageLedger tracks external-API call counts so credentialed feeds can
// enforce a daily cap. Implemented by the db package against the api_usage
// table.
type UsageLedger interface {
	UsageToday(ctx context.Context, source string) (int, error)
	AddUsage(ctx context.Context, source string, calls int) error
}

// linkedInQuery is one keyword/geo cell of the LinkedIn search matrix.
type linkedInQuery struct {
	Keyword string
	GeoID   string
}

// Geo IDs: 101165590 = European Union, 103644278 = United States.
var linkedInQueries = []linkedInQuery{
	{"Product Manager", "101165590"},
	{"Product Manager", "103644278"},
	{"Senior Product Manager", "101165590"},
	{"Senior Product Manager", "103644278"},
	{"Staff Product Manager", "103644278"},
	{"Group Product Manager", "103644278"},
}

// LinkedIn fetches LinkedIn job search results through the Proxycurl API.
// Every request is metered against the usage ledger and the sweep stops at
// the daily cap; Proxycurl bills per call.
type LinkedIn struct {
	BaseURL  string
	Client   *http.Client
	APIKey   string
	DailyCap int
	Ledger   UsageLedger
}

// DefaultLinkedInDailyCap bounds Proxycurl spend per day.
const DefaultLinkedInDailyCap = 100

// NewLinkedIn returns an adapter against the production Proxycurl endpoint.
func NewLinkedIn(client *http.Client, apiKey string, dailyCap int, ledger UsageLedger) *LinkedIn {
	if dailyCap <= 0 {
		dailyCap = DefaultLinkedInDailyCap
	}
	return &LinkedIn{
		BaseURL:  "https://nubela.co",
		Client:   httpClientOrDefault(client),
		APIKey:   apiKey,
		DailyCap: dailyCap,
		Ledger:   ledger,
	}
}

// Configured reports whether the Proxycurl API key is present.
func (l *LinkedIn) Configured() bool {
	return l.APIKey != ""
}

type linkedInJob struct {
	JobTitle              string `json:"job_title"`
	Company               string `json:"company"`
	Location              string `json:"location"`
	JobURL                string `json:"job_url"`
	LinkedInJobURLCleaned string `json:"linkedin_job_url_cleaned"`
	ListedAt              string `json:"listed_at"`
}

type linkedInResponse struct {
	Job []linkedInJob `json:"job"`
}

// Fetch walks the query matrix until the daily cap is reached. Calls made
// are recorded in the ledger in one batch at the end of the sweep so the
// next run sees an accurate count.
func (l *LinkedIn) Fetch(ctx context.Context) []Job {
	if !l.Configured() {
		log.Printf("[proxycurl] API key not set, skipping")
		return nil
	}

	callsToday, err := l.Ledger.UsageToday(ctx, SourceLinkedIn)
	if err != nil {
		log.Printf("[proxycurl] usage lookup failed: %v", err)
		return nil
	}
	if callsToday >= l.DailyCap {
		log.Printf("[proxycurl] daily cap reached (%d calls), skipping", callsToday)
		return nil
	}

	remaining := l.DailyCap - callsToday
	callsMade := 0
	var jobs []Job

	for _, query := range linkedInQueries {
		if callsMade >= remaining {
			log.Printf("[proxycurl] cap reached mid-run, stopping")
			break
		}

		results, err := l.fetchQuery(ctx, query)
		callsMade++
		if err != nil {
			log.Printf("[proxycurl] error query=%+v: %v", query, err)
			break
		}

		for _, raw := range results {
			if !classify.IsRelevantRole(raw.JobTitle) {
				continue
			}

			applyURL := raw.LinkedInJobURLCleaned
			if applyURL == "" {
				applyURL = raw.JobURL
			}
			// Proxycurl has no stable listing ID; the cleaned job URL
			// serves as one.
			if applyURL == "" {
				continue
			}

			companyName := raw.Company
			if companyName == "" {
				companyName = "Unknown"
			}

			jobs = append(jobs, NewJob(
				SourceLinkedIn,
				applyURL,
				raw.JobTitle,
				companyName,
				raw.Location,
				applyURL,
				postedAt(raw.ListedAt),
			))
		}
	}

	if callsMade > 0 {
		if err := l.Ledger.AddUsage(ctx, SourceLinkedIn, callsMade); err != nil {
			log.Printf("[proxycurl] usage record failed: %v", err)
		}
	}
	return jobs
}

func (l *LinkedIn) fetchQuery(ctx context.Context, query linkedInQuery) ([]linkedInJob, error) {
	endpoint := l.BaseURL + "/proxycurl/api/v2/linkedin/company/job"
	params := url.Values{
		"keyword":    {query.Keyword},
		"geo_id":     {query.GeoID},
		"type":       {"full-time"},
		"experience": {"mid-senior level,director"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.APIKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	var data linkedInResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return data.Job, nil
}
