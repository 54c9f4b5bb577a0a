package discover

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/sources"
)

// minCareerBodyBytes is the smallest response body accepted as a real
// career page; anything thinner is a parked domain or an error shim.
const minCareerBodyBytes = 500

// platformTemplates map each ATS platform to its board-URL shape; %s is the
// board slug.
var platformTemplates = map[sources.Platform]string{
	sources.PlatformGreenhouse:     "https://boards.greenhouse.io/%s",
	sources.PlatformLever:          "https://jobs.lever.co/%s",
	sources.PlatformAshby:          "https://jobs.ashbyhq.com/%s",
	sources.PlatformSmartRecruiter: "https://jobs.smartrecruiters.com/%s",
	sources.PlatformTeamtailor:     "https://%s.teamtailor.com",
}

// platformOrder fixes candidate ordering; map iteration would make discovery
// nondeterministic.
var platformOrder = []sources.Platform{
	sources.PlatformGreenhouse,
	sources.PlatformLever,
	sources.PlatformAshby,
	sources.PlatformSmartRecruiter,
	sources.PlatformTeamtailor,
}

// careerPathSuffixes are the path candidates tried under a known homepage.
var careerPathSuffixes = []string{"/careers", "/jobs", "/careers/jobs", "/join-us", "/company/careers"}

// careerPathSegments mark a resolved URL as career-shaped when no ATS
// domain matched.
var careerPathSegments = []string{"career", "job", "join", "position", "vacanc", "opening", "hiring"}

// careerBodyKeywords must appear in a candidate page's body.
var careerBodyKeywords = []string{"career", "job", "position", "opening", "vacanc", "hiring", "join us"}

// Hint carries a known ATS platform and board slug for a company, when
// curation has recorded one.
type Hint struct {
	Platform sources.Platform
	Slug     string
}

// Prospect is the discovery input for one company: whatever is already
// known about where its jobs might live.
type Prospect struct {
	Name        string
	HomepageURL string
	Slug        string // known board slug without a platform
	Hint        *Hint
}

// CareerDiscoverer resolves a prospect to a validated career-page URL.
type CareerDiscoverer struct {
	FetchOpts *fetch.Options
}

// NewCareerDiscoverer returns a discoverer with default fetch options.
func NewCareerDiscoverer() *CareerDiscoverer {
	return &CareerDiscoverer{FetchOpts: fetch.DefaultOptions()}
}

// Discover generates candidates in priority order and returns the first one
// that validates. A platform hint outranks everything: once its URL passes,
// no homepage-derived candidate is ever probed.
func (d *CareerDiscoverer) Discover(ctx context.Context, p Prospect) (string, bool) {
	for _, candidate := range Candidates(p) {
		if d.validate(ctx, candidate) {
			log.Printf("[discover] %s: career URL %s", p.Name, candidate)
			return candidate, true
		}
	}
	return "", false
}

// Candidates expands a prospect into an ordered, deduplicated candidate
// list: hint first, then known-slug platform guesses, then homepage-derived
// paths and platform guesses, then name-slug guesses.
func Candidates(p Prospect) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(candidate string) {
		if candidate == "" {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	if p.Hint != nil && p.Hint.Slug != "" {
		if tpl, ok := platformTemplates[p.Hint.Platform]; ok {
			add(fmt.Sprintf(tpl, p.Hint.Slug))
		}
	}

	if p.Slug != "" {
		for _, platform := range platformOrder {
			add(fmt.Sprintf(platformTemplates[platform], p.Slug))
		}
	}

	if p.HomepageURL != "" {
		if base, domain, ok := splitHomepage(p.HomepageURL); ok {
			for _, suffix := range careerPathSuffixes {
				add(base + suffix)
			}
			add("https://careers." + domain)
			label := domainLabel(domain)
			for _, platform := range platformOrder {
				add(fmt.Sprintf(platformTemplates[platform], label))
			}
		}
		return out
	}

	for _, slug := range Slugify(p.Name) {
		add(fmt.Sprintf("https://www.%s.com/careers", slug))
		add(fmt.Sprintf("https://www.%s.com/jobs", slug))
		for _, platform := range platformOrder {
			add(fmt.Sprintf(platformTemplates[platform], slug))
		}
	}
	return out
}

// validate runs the candidate gauntlet: reachable, career-shaped URL (ATS
// domain or career path segment), career keyword in the body, and a minimum
// body size.
func (d *CareerDiscoverer) validate(ctx context.Context, candidate string) bool {
	result, err := fetch.URL(ctx, candidate, d.FetchOpts)
	if err != nil {
		return false
	}

	if !careerShaped(result.FinalURL) {
		return false
	}

	body := strings.ToLower(string(result.Body))
	keyword := false
	for _, kw := range careerBodyKeywords {
		if strings.Contains(body, kw) {
			keyword = true
			break
		}
	}
	if !keyword {
		return false
	}

	return len(result.Body) >= minCareerBodyBytes
}

// careerShaped reports whether a resolved URL looks like a career page: a
// recognized ATS board, or a career segment in host or path.
func careerShaped(finalURL string) bool {
	if _, _, ok := sources.DetectATS(finalURL); ok {
		return true
	}
	lowered := strings.ToLower(finalURL)
	for _, segment := range careerPathSegments {
		if strings.Contains(lowered, segment) {
			return true
		}
	}
	return false
}

// splitHomepage yields "scheme://host" and the bare domain for candidate
// construction.
func splitHomepage(homepage string) (base, domain string, ok bool) {
	parsed, err := url.Parse(normalizeScheme(homepage))
	if err != nil || parsed.Host == "" {
		return "", "", false
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	return parsed.Scheme + "://" + parsed.Host, host, true
}

// domainLabel extracts the registrable label of a domain ("acme" from
// "acme.co.uk") for use as a blind board slug.
func domainLabel(domain string) string {
	if idx := strings.IndexByte(domain, '.'); idx > 0 {
		return domain[:idx]
	}
	return domain
}
