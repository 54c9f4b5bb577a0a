package sources

import (
	"context"
	"log"
	"regexp"
)

// atsPattern matches one known ATS career-URL shape; the first capture
// group is the board slug.
type atsPattern struct {
	platform Platform
	re       *regexp.Regexp
}

// Pattern order matters only for readability; the shapes are mutually
// exclusive on host.
var atsPatterns = []atsPattern{
	// boards.greenhouse.io/{slug} or boards.eu.greenhouse.io/{slug}
	{PlatformGreenhouse, regexp.MustCompile(`(?i)^https?://boards(?:\.eu)?\.greenhouse\.io/([^/?#]+)`)},
	// jobs.lever.co/{slug}
	{PlatformLever, regexp.MustCompile(`(?i)^https?://jobs\.lever\.co/([^/?#]+)`)},
	// jobs.ashbyhq.com/{slug} or jobs.ashby.com/{slug}
	{PlatformAshby, regexp.MustCompile(`(?i)^https?://jobs\.ashby(?:hq)?\.com/([^/?#]+)`)},
	// jobs.smartrecruiters.com/{slug} or careers.smartrecruiters.com/{slug}
	{PlatformSmartRecruiter, regexp.MustCompile(`(?i)^https?://(?:jobs|careers)\.smartrecruiters\.com/([^/?#]+)`)},
	// {slug}.teamtailor.com
	{PlatformTeamtailor, regexp.MustCompile(`(?i)^https?://([^./]+)\.teamtailor\.com`)},
}

// DetectATS matches a career URL against the known ATS URL shapes and
// returns the platform and board slug on a hit.
func DetectATS(careerURL string) (Platform, string, bool) {
	for _, p := range atsPatterns {
		if m := p.re.FindStringSubmatch(careerURL); m != nil && m[1] != "" {
			return p.platform, m[1], true
		}
	}
	return "", "", false
}

// Router dispatches a career URL to the matching ATS adapter. It is the
// fallback extraction path for client-rendered career pages whose static
// markup cannot be scraped.
type Router struct {
	registry Registry
}

// NewRouter builds a router over the given adapter registry.
func NewRouter(registry Registry) *Router {
	return &Router{registry: registry}
}

// TryFallback attempts extraction via a known ATS JSON API. The second
// return value is false when the URL matches no known platform, meaning "not
// applicable", which callers must distinguish from a matched platform that
// happens to list zero relevant jobs.
func (r *Router) TryFallback(ctx context.Context, careerURL, companyName string) ([]Job, bool) {
	platform, slug, ok := DetectATS(careerURL)
	if !ok {
		return nil, false
	}

	fetcher, ok := r.registry[platform]
	if !ok {
		return nil, false
	}

	jobs := fetcher.Fetch(ctx, slug, companyName)
	log.Printf("[router] %s: resolved via %s API (slug=%s), %d jobs", companyName, platform, slug, len(jobs))
	return jobs, true
}
