package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/fursa/internal/classify"
)

// Teamtailor fetches the public jobs.json endpoint exposed per company
// subdomain: https://{slug}.teamtailor.com/jobs.json
// The BaseURLTemplate exists so tests can point the adapter at a local
// server; %s is the slug.
type Teamtailor struct {
	BaseURLTemplate string
	Client          *http.Client
}

// NewTeamtailor returns an adapter against the production endpoint.
func NewTeamtailor(client *http.Client) *Teamtailor {
	return &Teamtailor{
		BaseURLTemplate: "https://%s.teamtailor.com",
		Client:          httpClientOrDefault(client),
	}
}

type teamtailorJob struct {
	ID            json.Number `json:"id"`
	Title         string      `json:"title"`
	HumanLocation string      `json:"human-location"`
	Location      string      `json:"location"`
	ApplyURL      string      `json:"apply-url"`
	CareerPageURL string      `json:"career-page-url"`
	CreatedAt     string      `json:"created-at"`
}

// Fetch lists the board and yields relevant roles. Teamtailor may return
// either a bare list or an object wrapping a "jobs" key, and uses
// kebab-case field names.
func (t *Teamtailor) Fetch(ctx context.Context, slug, companyName string) []Job {
	base := fmt.Sprintf(t.BaseURLTemplate, slug)
	endpoint := base + "/jobs.json"

	var raw json.RawMessage
	if err := getJSON(ctx, t.Client, endpoint, nil, &raw); err != nil {
		logFetchError(SourceTeamtailor, slug, err)
		return nil
	}

	var listings []teamtailorJob
	if err := json.Unmarshal(raw, &listings); err != nil {
		var wrapped struct {
			Jobs []teamtailorJob `json:"jobs"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			logFetchError(SourceTeamtailor, slug, fmt.Errorf("malformed payload: %w", err))
			return nil
		}
		listings = wrapped.Jobs
	}

	var jobs []Job
	for _, j := range listings {
		if !classify.IsRelevantRole(j.Title) {
			continue
		}

		id := j.ID.String()
		if id == "" {
			continue
		}

		location := j.HumanLocation
		if location == "" {
			location = j.Location
		}

		applyURL := j.ApplyURL
		if applyURL == "" {
			applyURL = j.CareerPageURL
		}
		if applyURL == "" {
			applyURL = fmt.Sprintf("%s/jobs/%s", base, url.PathEscape(id))
		}

		jobs = append(jobs, NewJob(
			SourceTeamtailor,
			id,
			j.Title,
			companyName,
			location,
			applyURL,
			postedAt(j.CreatedAt),
		))
	}
	return jobs
}
