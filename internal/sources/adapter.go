package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Platform identifies a supported ATS vendor.
type Platform string

// The five ATS platforms with public board APIs.
const (
	PlatformGreenhouse     Platform = "greenhouse"
	PlatformLever          Platform = "lever"
	PlatformAshby          Platform = "ashby"
	PlatformSmartRecruiter Platform = "smartrecruiters"
	PlatformTeamtailor     Platform = "teamtailor"
)

// Fetcher is the common adapter contract: one bulk request against a vendor
// board, filtered to relevant roles, mapped to canonical records. Adapters
// never fail past their boundary; a dead board or a malformed payload is an
// empty result, so one bad source cannot abort a batch.
type Fetcher interface {
	Fetch(ctx context.Context, slug, companyName string) []Job
}

// Registry maps each ATS platform to its adapter. It is the closed dispatch
// table the router uses; adding a platform means adding a constant, an
// adapter, and one entry here.
type Registry map[Platform]Fetcher

// NewRegistry returns the default adapter set with production endpoints.
func NewRegistry(client *http.Client) Registry {
	return Registry{
		PlatformGreenhouse:     NewGreenhouse(client),
		PlatformLever:          NewLever(client),
		PlatformAshby:          NewAshby(client),
		PlatformSmartRecruiter: NewSmartRecruiters(client),
		PlatformTeamtailor:     NewTeamtailor(client),
	}
}

// defaultAdapterTimeout bounds a single vendor API request.
const defaultAdapterTimeout = 15 * time.Second

// userAgent identifies the aggregator to vendor APIs.
const userAgent = "Fursa/1.0 (job aggregator)"

// errNoBoard marks a 404/400 vendor response: the company has no board on
// this platform. Not an error condition, just zero jobs.
var errNoBoard = errors.New("no job board for slug")

func httpClientOrDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultAdapterTimeout}
}

// getJSON fetches rawURL with optional query params and decodes the response
// into v. Returns errNoBoard on 404/400.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, v any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return errNoBoard
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

// logFetchError applies the shared adapter failure policy: a missing board
// is silent, everything else is logged once and swallowed.
func logFetchError(source, slug string, err error) {
	if errors.Is(err, errNoBoard) {
		log.Printf("[%s] no board for slug=%s", source, slug)
		return
	}
	log.Printf("[%s] fetch error slug=%s: %v", source, slug, err)
}
