package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// Greenhouse fetches from the public Greenhouse board API.
// Endpoint: https://boards-api.greenhouse.io/v1/boards/{slug}/jobs
type Greenhouse struct {
	BaseURL string
	Client  *http.Client
}

// NewGreenhouse returns an adapter against the production endpoint.
func NewGreenhouse(client *http.Client) *Greenhouse {
	return &Greenhouse{
		BaseURL: "https://boards-api.greenhouse.io",
		Client:  httpClientOrDefault(client),
	}
}

type greenhouseJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Location *struct {
		Name string `json:"name"`
	} `json:"location"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Fetch lists the board and yields relevant roles. Greenhouse nests the
// location in an object and uses numeric IDs.
func (g *Greenhouse) Fetch(ctx context.Context, slug, companyName string) []Job {
	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs", g.BaseURL, url.PathEscape(slug))

	var data greenhouseResponse
	if err := getJSON(ctx, g.Client, endpoint, url.Values{"content": {"false"}}, &data); err != nil {
		logFetchError(SourceGreenhouse, slug, err)
		return nil
	}

	var jobs []Job
	for _, raw := range data.Jobs {
		if !classify.IsRelevantRole(raw.Title) {
			continue
		}

		location := ""
		if raw.Location != nil {
			location = raw.Location.Name
		}

		jobs = append(jobs, NewJob(
			SourceGreenhouse,
			raw.ID.String(),
			raw.Title,
			companyName,
			location,
			raw.AbsoluteURL,
			postedAt(raw.UpdatedAt),
		))
	}
	return jobs
}
