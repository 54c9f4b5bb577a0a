package discover

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fursa/internal/llm"
)

// cannedTransport serves fixed responses per URL without touching the
// network, and records every URL requested.
type cannedTransport struct {
	mu        sync.Mutex
	responses map[string]cannedResponse
	requested []string
}

type cannedResponse struct {
	status int
	body   string
}

func newCannedTransport() *cannedTransport {
	return &cannedTransport{responses: map[string]cannedResponse{}}
}

func (c *cannedTransport) serve(url string, status int, body string) {
	c.responses[url] = cannedResponse{status: status, body: body}
}

func (c *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	c.mu.Lock()
	c.requested = append(c.requested, url)
	resp, ok := c.responses[url]
	c.mu.Unlock()

	if !ok {
		resp = cannedResponse{status: http.StatusNotFound}
	}
	body := resp.body
	if req.Method == http.MethodHead {
		body = ""
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (c *cannedTransport) sawPrefix(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, url := range c.requested {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// careerBody is a page big enough and wordy enough to pass validation.
var careerBody = strings.Repeat("Open positions on our product team. Careers at Acme. ", 20)

// batchLLM returns a canned homepage payload and counts calls.
type batchLLM struct {
	payload string
	calls   int
}

func (b *batchLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	b.calls++
	return b.payload, nil
}

func (b *batchLLM) Close() error { return nil }

func TestHomepages_ValidatesAndTogglesWWW(t *testing.T) {
	transport := newCannedTransport()
	transport.serve("https://acme.com", http.StatusOK, "ok")
	// The model guessed the bare host; only the www variant answers.
	transport.serve("https://www.umbrella.example", http.StatusOK, "ok")

	client := &batchLLM{payload: `{"results": [
		{"name": "Acme", "url": "https://acme.com"},
		{"name": "Umbrella", "url": "https://umbrella.example"},
		{"name": "Ghost Co", "url": "https://ghost.example"},
		{"name": "Never Asked", "url": "https://unrelated.example"}
	]}`}

	d := NewHomepageDiscoverer(client)
	d.FetchOpts.Client = &http.Client{Transport: transport}

	got := d.Discover(context.Background(), []string{"Acme", "Umbrella", "Ghost Co"})

	assert.Equal(t, map[string]string{
		"Acme":     "https://acme.com",
		"Umbrella": "https://www.umbrella.example",
	}, got)
	assert.Equal(t, 1, client.calls)
	assert.False(t, transport.sawPrefix("https://unrelated.example"),
		"names the model volunteered unasked must be ignored")
}

func TestHomepages_SplitsBatches(t *testing.T) {
	client := &batchLLM{payload: `{"results": []}`}
	d := NewHomepageDiscoverer(client)
	d.BatchSize = 2
	d.FetchOpts.Client = &http.Client{Transport: newCannedTransport()}

	d.Discover(context.Background(), []string{"A", "B", "C", "D", "E"})
	assert.Equal(t, 3, client.calls)
}

func TestCandidates_PriorityOrder(t *testing.T) {
	p := Prospect{
		Name:        "Acme Labs",
		HomepageURL: "https://www.acme.com",
		Hint:        &Hint{Platform: "lever", Slug: "acme"},
	}

	candidates := Candidates(p)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "https://jobs.lever.co/acme", candidates[0],
		"a platform hint must outrank every other candidate")
	assert.Contains(t, candidates, "https://www.acme.com/careers")
	assert.Contains(t, candidates, "https://careers.acme.com")
}

func TestCandidates_NameSlugFallback(t *testing.T) {
	candidates := Candidates(Prospect{Name: "Acme Labs Inc."})
	assert.Contains(t, candidates, "https://www.acmelabs.com/careers")
	assert.Contains(t, candidates, "https://boards.greenhouse.io/acme-labs")
}

func TestDiscover_HintWinsWithoutProbingHomepage(t *testing.T) {
	transport := newCannedTransport()
	transport.serve("https://jobs.lever.co/acme", http.StatusOK, careerBody)

	d := NewCareerDiscoverer()
	d.FetchOpts.Client = &http.Client{Transport: transport}

	url, ok := d.Discover(context.Background(), Prospect{
		Name:        "Acme",
		HomepageURL: "https://www.acme.com",
		Hint:        &Hint{Platform: "lever", Slug: "acme"},
	})

	require.True(t, ok)
	assert.Equal(t, "https://jobs.lever.co/acme", url)
	assert.False(t, transport.sawPrefix("https://www.acme.com"),
		"homepage candidates must not be probed once the hint validates")
}

func TestDiscover_FallsThroughToHomepagePath(t *testing.T) {
	transport := newCannedTransport()
	transport.serve("https://www.acme.com/careers", http.StatusOK, careerBody)

	d := NewCareerDiscoverer()
	d.FetchOpts.Client = &http.Client{Transport: transport}

	url, ok := d.Discover(context.Background(), Prospect{
		Name:        "Acme",
		HomepageURL: "https://www.acme.com",
	})

	require.True(t, ok)
	assert.Equal(t, "https://www.acme.com/careers", url)
}

func TestDiscover_RejectsThinAndOffTopicPages(t *testing.T) {
	transport := newCannedTransport()
	// Reachable but too thin.
	transport.serve("https://www.acme.com/careers", http.StatusOK, "careers")
	// Reachable and big, but no career keyword.
	transport.serve("https://www.acme.com/jobs", http.StatusOK, strings.Repeat("lorem ipsum dolor ", 100))

	d := NewCareerDiscoverer()
	d.FetchOpts.Client = &http.Client{Transport: transport}

	_, ok := d.Discover(context.Background(), Prospect{
		Name:        "Acme",
		HomepageURL: "https://www.acme.com",
	})
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Acme Labs Inc.", []string{"acmelabs", "acme-labs"}},
		{"Stripe", []string{"stripe"}},
		{"N26 GmbH", []string{"n26"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.name))
		})
	}
}
