package sources

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// Remotive fetches the free Remotive remote-jobs feed, filtered to the
// product category. Every listing is remote by definition.
// Endpoint: https://remotive.com/api/remote-jobs?category=product
type Remotive struct {
	BaseURL string
	Client  *http.Client
}

// NewRemotive returns an adapter against the production endpoint.
func NewRemotive(client *http.Client) *Remotive {
	return &Remotive{
		BaseURL: "https://remotive.com",
		Client:  httpClientOrDefault(client),
	}
}

type remotiveJob struct {
	ID                        json.Number `json:"id"`
	Title                     string      `json:"title"`
	CompanyName               string      `json:"company_name"`
	URL                       string      `json:"url"`
	CandidateRequiredLocation string      `json:"candidate_required_location"`
	PublicationDate           string      `json:"publication_date"`
}

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

// Fetch pulls the whole product-category feed. The feed is global, so the
// company name comes from each listing rather than from a slug.
func (r *Remotive) Fetch(ctx context.Context) []Job {
	endpoint := r.BaseURL + "/api/remote-jobs"

	var data remotiveResponse
	if err := getJSON(ctx, r.Client, endpoint, url.Values{"category": {"product"}}, &data); err != nil {
		log.Printf("[remotive] fetch error: %v", err)
		return nil
	}

	var jobs []Job
	for _, raw := range data.Jobs {
		if !classify.IsRelevantRole(raw.Title) {
			continue
		}
		if raw.URL == "" {
			continue
		}

		location := raw.CandidateRequiredLocation
		if location == "" {
			location = "Remote"
		}

		job := NewJob(
			SourceRemotive,
			raw.ID.String(),
			raw.Title,
			raw.CompanyName,
			location,
			raw.URL,
			postedAt(raw.PublicationDate),
		)
		// The feed is remote-only; location strings like "Europe" must not
		// demote the region bucket.
		job.GeoRegion = classify.RegionRemote
		jobs = append(jobs, job)
	}
	return jobs
}
