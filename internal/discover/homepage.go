// Package discover fills in missing company URLs: homepage discovery via
// batched LLM lookups with live validation, and career-page discovery via
// priority-ordered candidate templates with content validation.
package discover

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/llm"
	"github.com/jonathan/fursa/internal/prompts"
)

// Concurrency defaults. LLM batch calls are expensive and run at low
// fan-out; reachability probes are cheap and run wider.
const (
	DefaultBatchSize        = 25
	DefaultLLMConcurrency   = 5
	DefaultProbeConcurrency = 20
)

// HomepageDiscoverer resolves company names to validated homepage URLs.
// Unvalidated model output never leaves this type.
type HomepageDiscoverer struct {
	Client           llm.Client
	FetchOpts        *fetch.Options
	BatchSize        int
	LLMConcurrency   int
	ProbeConcurrency int
}

// NewHomepageDiscoverer returns a discoverer with default batch and
// concurrency settings.
func NewHomepageDiscoverer(client llm.Client) *HomepageDiscoverer {
	return &HomepageDiscoverer{
		Client:           client,
		FetchOpts:        fetch.DefaultOptions(),
		BatchSize:        DefaultBatchSize,
		LLMConcurrency:   DefaultLLMConcurrency,
		ProbeConcurrency: DefaultProbeConcurrency,
	}
}

type homepagePair struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type homepagePayload struct {
	Results []homepagePair `json:"results"`
}

// Discover maps company names to validated homepage URLs. Names the model
// does not know, and URLs that fail the reachability probe (in both www and
// bare-host variants), are absent from the result. Failures are logged and
// swallowed; a dead batch costs its names, not the run.
func (d *HomepageDiscoverer) Discover(ctx context.Context, names []string) map[string]string {
	if len(names) == 0 {
		return map[string]string{}
	}

	var mu sync.Mutex
	candidates := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.LLMConcurrency)
	for start := 0; start < len(names); start += d.BatchSize {
		batch := names[start:min(start+d.BatchSize, len(names))]
		g.Go(func() error {
			pairs, err := d.lookupBatch(gctx, batch)
			if err != nil {
				log.Printf("[discover] homepage batch failed (%d names): %v", len(batch), err)
				return nil
			}
			mu.Lock()
			for name, rawURL := range pairs {
				candidates[name] = rawURL
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	validated := make(map[string]string)
	vg, vctx := errgroup.WithContext(ctx)
	vg.SetLimit(d.ProbeConcurrency)
	for name, rawURL := range candidates {
		name, rawURL := name, rawURL // per-iteration copies; module compiles under go 1.21 loop semantics
		vg.Go(func() error {
			if finalURL, ok := d.probe(vctx, rawURL); ok {
				mu.Lock()
				validated[name] = finalURL
				mu.Unlock()
			}
			return nil
		})
	}
	_ = vg.Wait()

	return validated
}

// lookupBatch asks the LLM for homepage URLs for one batch of names. Only
// names that were actually asked about are kept; the model sometimes
// volunteers extras.
func (d *HomepageDiscoverer) lookupBatch(ctx context.Context, batch []string) (map[string]string, error) {
	asked := make(map[string]string, len(batch))
	for _, name := range batch {
		asked[strings.ToLower(strings.TrimSpace(name))] = name
	}

	prompt := prompts.Format(prompts.MustGet("discovery.json", "homepage-lookup"), map[string]string{
		"Companies": strings.Join(batch, "\n"),
	})

	raw, err := d.Client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, err
	}

	var payload homepagePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, pair := range payload.Results {
		canonical, ok := asked[strings.ToLower(strings.TrimSpace(pair.Name))]
		if !ok {
			continue
		}
		rawURL := normalizeScheme(pair.URL)
		if rawURL == "" {
			continue
		}
		out[canonical] = rawURL
	}
	return out, nil
}

// probe checks that a URL answers. On failure it retries once with the www
// prefix toggled, since models frequently guess the wrong variant.
func (d *HomepageDiscoverer) probe(ctx context.Context, rawURL string) (string, bool) {
	if reachable(ctx, d.FetchOpts, rawURL) {
		return rawURL, true
	}
	if alt := toggleWWW(rawURL); alt != rawURL && reachable(ctx, d.FetchOpts, alt) {
		return alt, true
	}
	return "", false
}

// reachable issues a HEAD request, falling back to GET for servers that
// reject HEAD. Any status below 400 counts.
func reachable(ctx context.Context, opts *fetch.Options, rawURL string) bool {
	client := probeClient(opts)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode < 400 {
			return true
		}
		if resp.StatusCode != http.StatusMethodNotAllowed && resp.StatusCode != http.StatusForbidden {
			return false
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err = client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 400
}

func probeClient(opts *fetch.Options) *http.Client {
	if opts != nil && opts.Client != nil {
		return opts.Client
	}
	return &http.Client{Timeout: fetch.DefaultTimeout}
}

// normalizeScheme ensures a candidate URL carries an http(s) scheme.
func normalizeScheme(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

// toggleWWW adds or removes the www prefix on the host.
func toggleWWW(rawURL string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(rawURL, scheme); ok {
			if stripped, had := strings.CutPrefix(rest, "www."); had {
				return scheme + stripped
			}
			return scheme + "www." + rest
		}
	}
	return rawURL
}
