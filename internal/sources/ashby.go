package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// Ashby fetches from the public Ashby posting API.
// Endpoint: https://api.ashbyhq.com/posting-api/job-board/{slug}
type Ashby struct {
	BaseURL string
	Client  *http.Client
}

// NewAshby returns an adapter against the production endpoint.
func NewAshby(client *http.Client) *Ashby {
	return &Ashby{
		BaseURL: "https://api.ashbyhq.com",
		Client:  httpClientOrDefault(client),
	}
}

type ashbyJob struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	LocationName string `json:"locationName"`
	JobURL       string `json:"jobUrl"`
	PublishedAt  string `json:"publishedAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// Fetch lists the board and yields relevant roles. Ashby keeps the location
// flat and exposes two date fields; publishedAt wins when present.
func (a *Ashby) Fetch(ctx context.Context, slug, companyName string) []Job {
	endpoint := fmt.Sprintf("%s/posting-api/job-board/%s", a.BaseURL, url.PathEscape(slug))

	var data ashbyResponse
	if err := getJSON(ctx, a.Client, endpoint, url.Values{"includeCompensation": {"false"}}, &data); err != nil {
		logFetchError(SourceAshby, slug, err)
		return nil
	}

	var jobs []Job
	for _, raw := range data.Jobs {
		if !classify.IsRelevantRole(raw.Title) {
			continue
		}

		location := raw.Location
		if location == "" {
			location = raw.LocationName
		}

		posted := raw.PublishedAt
		if posted == "" {
			posted = raw.UpdatedAt
		}

		jobs = append(jobs, NewJob(
			SourceAshby,
			raw.ID,
			raw.Title,
			companyName,
			location,
			raw.JobURL,
			postedAt(posted),
		))
	}
	return jobs
}
