// Package extract implements the career-page text extractor: it fetches a
// career page, short-circuits on an unchanged content fingerprint, converts
// the markup to plain text, detects client-rendered shell pages, and walks a
// bounded pagination loop through the LLM to collect job listings.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/fursa/internal/classify"
	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/llm"
	"github.com/jonathan/fursa/internal/prompts"
	"github.com/jonathan/fursa/internal/sources"
)

// Status is the outcome variant of one extractor invocation. These are
// routine results the orchestrator branches on, not errors.
type Status string

const (
	// StatusOK means the page was scraped; Jobs holds what was found.
	StatusOK Status = "ok"
	// StatusUnchanged means the content fingerprint matched the previous
	// visit, so no text extraction ran.
	StatusUnchanged Status = "unchanged"
	// StatusShellDetected means the page renders client-side and its static
	// markup carries no listings; the caller should try the ATS router.
	StatusShellDetected Status = "shell_detected"
)

// Result is what one invocation reports back to the orchestrator.
type Result struct {
	Status      Status
	Jobs        []sources.Job
	Fingerprint string
}

// Defaults for the pagination and prompt budgets.
const (
	DefaultMaxPages   = 20
	DefaultCharBudget = 15000
)

// Shell-detection thresholds: text under minStaticTextLen is a shell
// outright; text under shellSignalTextLen is a shell when the raw markup
// also carries a client-rendering signal phrase.
const (
	minStaticTextLen   = 100
	shellSignalTextLen = 400
)

// shellSignals are markup fragments that betray a client-rendered page.
var shellSignals = []string{
	"enable javascript",
	"javascript is required",
	"javascript to run this app",
	"loading...",
	"please wait",
}

// pageSchema validates the LLM extraction payload before it is trusted.
const pageSchema = `{
	"type": "object",
	"required": ["jobs"],
	"properties": {
		"jobs": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "url"],
				"properties": {
					"title": {"type": "string"},
					"location": {"type": "string"},
					"url": {"type": "string"},
					"posted_date": {"type": ["string", "null"]}
				}
			}
		},
		"next_page_url": {"type": ["string", "null"]}
	}
}`

type pageListing struct {
	Title      string `json:"title"`
	Location   string `json:"location"`
	URL        string `json:"url"`
	PostedDate string `json:"posted_date"`
}

type pagePayload struct {
	Jobs        []pageListing `json:"jobs"`
	NextPageURL string        `json:"next_page_url"`
}

// Extractor drives the per-company career-page extraction state machine. It
// keeps no state across invocations; the previous fingerprint comes from the
// caller.
type Extractor struct {
	Client     llm.Client
	FetchOpts  *fetch.Options
	MaxPages   int
	CharBudget int
}

// New returns an extractor with default pagination and prompt budgets.
func New(client llm.Client) *Extractor {
	return &Extractor{
		Client:     client,
		FetchOpts:  fetch.DefaultOptions(),
		MaxPages:   DefaultMaxPages,
		CharBudget: DefaultCharBudget,
	}
}

// Run extracts listings from careerURL. A fetch failure on the first page
// propagates as an error (use fetch.IsDeadResource to spot 404/410); a
// failure on any later page stops pagination and returns the jobs collected
// so far. Model failures, whether the call itself or a payload that fails
// validation, are zero results for that page: logged, never propagated, so
// the fingerprint still lands and an unchanged page is not re-billed next
// run. The fingerprint in the result always comes from the first page.
func (e *Extractor) Run(ctx context.Context, careerURL, companyName, prevFingerprint string) (*Result, error) {
	first, err := fetch.URL(ctx, careerURL, e.FetchOpts)
	if err != nil {
		return nil, err
	}

	fingerprint := fetch.Fingerprint(first.Body)
	if prevFingerprint != "" && prevFingerprint == fingerprint {
		return &Result{Status: StatusUnchanged, Fingerprint: fingerprint}, nil
	}

	visited := map[string]struct{}{careerURL: {}, first.FinalURL: {}}
	var jobs []sources.Job

	pageURL := first.FinalURL
	body := first.Body

	for page := 1; ; page++ {
		text, err := fetch.HTMLToText(string(body))
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("text conversion failed for %s: %w", careerURL, err)
			}
			break
		}
		text = fetch.Truncate(text, e.CharBudget)

		if isShellPage(body, text) {
			if page == 1 {
				return &Result{Status: StatusShellDetected, Fingerprint: fingerprint}, nil
			}
			// A shell page mid-pagination just ends the walk.
			break
		}

		pageJobs, nextURL, err := e.extractPage(ctx, pageURL, companyName, text)
		if err != nil {
			// Malformed model output is zero results, not a failed scrape.
			log.Printf("[extract] %s: page %d extraction failed, keeping %d jobs: %v",
				companyName, page, len(jobs), err)
			break
		}
		jobs = append(jobs, pageJobs...)

		if nextURL == "" || page >= e.MaxPages {
			break
		}
		if _, seen := visited[nextURL]; seen {
			break
		}
		visited[nextURL] = struct{}{}

		next, err := fetch.URL(ctx, nextURL, e.FetchOpts)
		if err != nil {
			log.Printf("[extract] %s: page %d fetch failed, keeping %d jobs: %v",
				companyName, page+1, len(jobs), err)
			break
		}
		visited[next.FinalURL] = struct{}{}
		pageURL = next.FinalURL
		body = next.Body
	}

	return &Result{Status: StatusOK, Jobs: jobs, Fingerprint: fingerprint}, nil
}

// extractPage runs one LLM pass over a page's text and maps the payload into
// canonical job records. The next-page URL, if any, is resolved absolute.
func (e *Extractor) extractPage(ctx context.Context, pageURL, companyName, text string) ([]sources.Job, string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, "", fmt.Errorf("bad page URL %q: %w", pageURL, err)
	}
	origin := base.Scheme + "://" + base.Host

	prompt := prompts.Format(prompts.MustGet("extraction.json", "extract-listings"), map[string]string{
		"Company": companyName,
		"PageURL": pageURL,
		"BaseURL": origin,
		"Content": text,
	})

	raw, err := e.Client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, "", err
	}

	payload, err := parsePage(raw)
	if err != nil {
		return nil, "", err
	}

	var jobs []sources.Job
	for _, listing := range payload.Jobs {
		if listing.Title == "" || listing.URL == "" {
			continue
		}
		if !classify.IsRelevantRole(listing.Title) {
			continue
		}

		applyURL := resolveURL(base, listing.URL)
		if applyURL == "" {
			continue
		}

		var posted any
		if listing.PostedDate != "" {
			posted = listing.PostedDate
		}

		job := sources.NewJob(
			sources.SourceCustom,
			applyURL,
			listing.Title,
			companyName,
			listing.Location,
			applyURL,
			postedTime(posted),
		)
		jobs = append(jobs, job)
	}

	return jobs, resolveURL(base, payload.NextPageURL), nil
}

// parsePage validates the LLM payload against the page schema, then decodes
// it. Invalid payloads are rejected wholesale rather than partially trusted.
func parsePage(raw string) (*pagePayload, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(pageSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("payload failed schema validation: %s", strings.Join(issues, "; "))
	}

	var payload pagePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("payload decode failed: %w", err)
	}
	return &payload, nil
}

// resolveURL makes rawURL absolute against base. Empty input or an
// unparseable value yields empty.
func resolveURL(base *url.URL, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// isShellPage applies the two-tier shell heuristic to a page.
func isShellPage(body []byte, text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minStaticTextLen {
		return true
	}
	if len(trimmed) >= shellSignalTextLen {
		return false
	}
	markup := strings.ToLower(string(body))
	for _, signal := range shellSignals {
		if strings.Contains(markup, signal) {
			return true
		}
	}
	return false
}

// postedTime normalizes a raw posted-date string, nil when absent or
// unparseable.
func postedTime(raw any) *time.Time {
	if raw == nil {
		return nil
	}
	if t, ok := classify.NormalizeDate(raw); ok {
		return &t
	}
	return nil
}
