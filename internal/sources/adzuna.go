package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// adzunaSearch is one country bucket of the Adzuna search matrix.
type adzunaSearch struct {
	Country string
}

// adzunaSearches covers the markets the aggregator tracks, mirroring the
// regions the classifier knows about.
var adzunaSearches = []adzunaSearch{
	{Country: "gb"},
	{Country: "de"},
	{Country: "nl"},
	{Country: "fr"},
	{Country: "it"},
	{Country: "pl"},
	{Country: "at"},
	{Country: "us"},
	{Country: "ca"},
	{Country: "au"},
	{Country: "sg"},
	{Country: "in"},
	{Country: "nz"},
	{Country: "br"},
	{Country: "mx"},
	{Country: "za"},
}

// adzunaKeywords are the search terms issued per country.
var adzunaKeywords = []string{"product manager", "product management"}

// adzunaMaxPages caps pagination per country/keyword pair.
const adzunaMaxPages = 3

// Adzuna fetches the Adzuna search API across a country/keyword matrix.
// Requires app credentials; without them the adapter reports itself
// unconfigured and the orchestrator skips it for the run.
type Adzuna struct {
	BaseURL string
	Client  *http.Client
	AppID   string
	AppKey  string
}

// NewAdzuna returns an adapter against the production endpoint.
func NewAdzuna(client *http.Client, appID, appKey string) *Adzuna {
	return &Adzuna{
		BaseURL: "https://api.adzuna.com",
		Client:  httpClientOrDefault(client),
		AppID:   appID,
		AppKey:  appKey,
	}
}

// Configured reports whether API credentials are present.
func (a *Adzuna) Configured() bool {
	return a.AppID != "" && a.AppKey != ""
}

type adzunaResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company *struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location *struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string `json:"redirect_url"`
	Created     string `json:"created"`
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

// Fetch walks the country/keyword matrix, up to three pages each,
// deduplicating by listing ID across the whole sweep. A failed page stops
// that country/keyword pair, not the sweep.
func (a *Adzuna) Fetch(ctx context.Context) []Job {
	if !a.Configured() {
		log.Printf("[adzuna] credentials not set, skipping")
		return nil
	}

	seen := make(map[string]struct{})
	var jobs []Job

	for _, search := range adzunaSearches {
		for _, keyword := range adzunaKeywords {
			for page := 1; page <= adzunaMaxPages; page++ {
				results, err := a.fetchPage(ctx, search.Country, keyword, page)
				if err != nil {
					log.Printf("[adzuna] error country=%s keyword=%q page=%d: %v",
						search.Country, keyword, page, err)
					break
				}
				if len(results) == 0 {
					break
				}

				for _, raw := range results {
					if !classify.IsRelevantRole(raw.Title) {
						continue
					}
					if raw.ID == "" {
						continue
					}
					if _, dup := seen[raw.ID]; dup {
						continue
					}
					seen[raw.ID] = struct{}{}

					companyName := "Unknown"
					if raw.Company != nil && raw.Company.DisplayName != "" {
						companyName = raw.Company.DisplayName
					}
					location := ""
					if raw.Location != nil {
						location = raw.Location.DisplayName
					}

					jobs = append(jobs, NewJob(
						SourceAdzuna,
						raw.ID,
						raw.Title,
						companyName,
						location,
						raw.RedirectURL,
						postedAt(raw.Created),
					))
				}
			}
		}
	}
	return jobs
}

func (a *Adzuna) fetchPage(ctx context.Context, country, keyword string, page int) ([]adzunaResult, error) {
	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/%d", a.BaseURL, country, page)
	params := url.Values{
		"app_id":           {a.AppID},
		"app_key":          {a.AppKey},
		"what":             {keyword},
		"what_exclude":     {"marketing analyst engineer designer"},
		"results_per_page": {"50"},
		"content-type":     {"application/json"},
	}

	var data adzunaResponse
	if err := getJSON(ctx, a.Client, endpoint, params, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}
