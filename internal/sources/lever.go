package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// Lever fetches from the public Lever postings API.
// Endpoint: https://api.lever.co/v0/postings/{slug}
type Lever struct {
	BaseURL string
	Client  *http.Client
}

// NewLever returns an adapter against the production endpoint.
func NewLever(client *http.Client) *Lever {
	return &Lever{
		BaseURL: "https://api.lever.co",
		Client:  httpClientOrDefault(client),
	}
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Categories struct {
		Location     string   `json:"location"`
		AllLocations []string `json:"allLocations"`
	} `json:"categories"`
	HostedURL string `json:"hostedUrl"`
	CreatedAt int64  `json:"createdAt"`
}

// Fetch lists the board and yields relevant roles. Lever returns a bare
// list of postings, a flat location string under categories, and epoch
// milliseconds for createdAt.
func (l *Lever) Fetch(ctx context.Context, slug, companyName string) []Job {
	endpoint := fmt.Sprintf("%s/v0/postings/%s", l.BaseURL, url.PathEscape(slug))

	var postings []leverPosting
	var raw json.RawMessage
	if err := getJSON(ctx, l.Client, endpoint, url.Values{"mode": {"json"}, "limit": {"500"}}, &raw); err != nil {
		logFetchError(SourceLever, slug, err)
		return nil
	}

	// Lever normally returns a list; some error payloads arrive as a
	// wrapped object with a "data" key.
	if err := json.Unmarshal(raw, &postings); err != nil {
		var wrapped struct {
			Data []leverPosting `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			logFetchError(SourceLever, slug, fmt.Errorf("malformed payload: %w", err))
			return nil
		}
		postings = wrapped.Data
	}

	var jobs []Job
	for _, p := range postings {
		if !classify.IsRelevantRole(p.Text) {
			continue
		}

		location := p.Categories.Location
		if location == "" && len(p.Categories.AllLocations) > 0 {
			location = p.Categories.AllLocations[0]
		}

		var posted any
		if p.CreatedAt != 0 {
			posted = p.CreatedAt
		}

		jobs = append(jobs, NewJob(
			SourceLever,
			p.ID,
			p.Text,
			companyName,
			location,
			p.HostedURL,
			postedAt(posted),
		))
	}
	return jobs
}
