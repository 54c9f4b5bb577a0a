package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/fursa/internal/classify"
)

// SmartRecruiters fetches from the public SmartRecruiters postings API.
// Endpoint: https://api.smartrecruiters.com/v1/companies/{slug}/postings
type SmartRecruiters struct {
	BaseURL string
	Client  *http.Client
}

// NewSmartRecruiters returns an adapter against the production endpoint.
func NewSmartRecruiters(client *http.Client) *SmartRecruiters {
	return &SmartRecruiters{
		BaseURL: "https://api.smartrecruiters.com",
		Client:  httpClientOrDefault(client),
	}
}

type smartRecruitersPosting struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Ref      string `json:"ref"`
	Location *struct {
		City    string `json:"city"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	ReleasedDate string `json:"releasedDate"`
}

type smartRecruitersResponse struct {
	Content []smartRecruitersPosting `json:"content"`
}

// Fetch lists the board and yields relevant roles. The location object has
// a remote flag plus city/country parts that get joined into the raw
// location string.
func (s *SmartRecruiters) Fetch(ctx context.Context, slug, companyName string) []Job {
	endpoint := fmt.Sprintf("%s/v1/companies/%s/postings", s.BaseURL, url.PathEscape(slug))

	var data smartRecruitersResponse
	if err := getJSON(ctx, s.Client, endpoint, url.Values{"limit": {"100"}}, &data); err != nil {
		logFetchError(SourceSmartRecruiter, slug, err)
		return nil
	}

	var jobs []Job
	for _, raw := range data.Content {
		if !classify.IsRelevantRole(raw.Name) {
			continue
		}

		id := raw.ID
		if id == "" {
			continue
		}

		location := ""
		if raw.Location != nil {
			if raw.Location.Remote {
				location = "Remote"
			} else {
				var parts []string
				if raw.Location.City != "" {
					parts = append(parts, raw.Location.City)
				}
				if raw.Location.Country != "" {
					parts = append(parts, raw.Location.Country)
				}
				location = strings.Join(parts, ", ")
			}
		}

		applyURL := raw.Ref
		if applyURL == "" {
			applyURL = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", slug, id)
		}

		jobs = append(jobs, NewJob(
			SourceSmartRecruiter,
			id,
			raw.Name,
			companyName,
			location,
			applyURL,
			postedAt(raw.ReleasedDate),
		))
	}
	return jobs
}
