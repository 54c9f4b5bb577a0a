package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fursa/internal/fetch"
	"github.com/jonathan/fursa/internal/llm"
)

// fakeLLM answers GenerateJSON from a routing table keyed by a substring of
// the prompt (the page URL works well), and counts invocations.
type fakeLLM struct {
	responses map[string]string
	fallback  string
	err       error
	calls     int
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for key, resp := range f.responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	return f.fallback, nil
}

func (f *fakeLLM) Close() error { return nil }

// listingPage renders an HTML career page with enough static text to pass
// shell detection.
func listingPage(titles ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><h1>Open roles</h1>")
	b.WriteString("<p>We build planning software for logistics teams across Europe and North America. ")
	b.WriteString("Our product organization owns discovery, delivery, and go-to-market for every team. ")
	b.WriteString("Browse the openings below and apply directly; we respond to every application within a week. ")
	b.WriteString("Relocation support and remote-first contracts are available for most positions.</p>")
	for i, title := range titles {
		fmt.Fprintf(&b, `<div><a href="/jobs/%d">%s</a></div>`, i+1, title)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestRun_UnchangedFingerprintSkipsLLM(t *testing.T) {
	body := listingPage("Product Manager")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := &fakeLLM{}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	prev := fetch.Fingerprint([]byte(body))
	result, err := e.Run(context.Background(), server.URL, "Acme", prev)
	require.NoError(t, err)

	assert.Equal(t, StatusUnchanged, result.Status)
	assert.Empty(t, result.Jobs)
	assert.Equal(t, prev, result.Fingerprint)
	assert.Zero(t, client.calls, "unchanged page must not reach the LLM")
}

func TestRun_ShellPageDetected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div><noscript>Please enable JavaScript to view openings.</noscript></body></html>`))
	}))
	defer server.Close()

	client := &fakeLLM{}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL, "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, StatusShellDetected, result.Status)
	assert.Empty(t, result.Jobs)
	assert.NotEmpty(t, result.Fingerprint)
	assert.Zero(t, client.calls)
}

func TestRun_ExtractsAndResolvesRelativeURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("Senior Product Manager", "Product Marketing Manager")))
	}))
	defer server.Close()

	client := &fakeLLM{fallback: `{
		"jobs": [
			{"title": "Senior Product Manager", "location": "Remote", "url": "/jobs/1", "posted_date": "2024-03-01"},
			{"title": "Product Marketing Manager", "location": "NYC", "url": "/jobs/2"},
			{"title": "Product Manager", "location": "Berlin", "url": ""}
		],
		"next_page_url": null
	}`}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL, "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	require.Len(t, result.Jobs, 1, "marketing role and empty-URL listing are dropped")

	job := result.Jobs[0]
	assert.Equal(t, "Senior Product Manager", job.Title)
	assert.Equal(t, server.URL+"/jobs/1", job.URL)
	assert.Equal(t, job.URL, job.SourceID)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, "2024-03-01", job.PostedDate.Format("2006-01-02"))
	assert.Equal(t, 1, client.calls)
}

func TestRun_PaginationCycleTerminates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("Product Manager")))
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("Staff Product Manager", "Group Product Manager")))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := &fakeLLM{responses: map[string]string{
		server.URL + "/a": fmt.Sprintf(`{
			"jobs": [{"title": "Product Manager", "location": "London", "url": "/jobs/1"}],
			"next_page_url": "%s/b"
		}`, server.URL),
		server.URL + "/b": fmt.Sprintf(`{
			"jobs": [{"title": "Staff Product Manager", "location": "London", "url": "/jobs/2"}],
			"next_page_url": "%s/a"
		}`, server.URL),
	}}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL+"/a", "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Len(t, result.Jobs, 2)
	assert.Equal(t, 2, client.calls, "the cycle back to page A must not refetch it")
}

func TestRun_FirstPageDeadResourcePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	e := New(&fakeLLM{})
	e.FetchOpts.Client = server.Client()

	_, err := e.Run(context.Background(), server.URL, "Acme", "")
	require.Error(t, err)
	assert.True(t, fetch.IsDeadResource(err))
}

func TestRun_LaterPageFailureKeepsAccumulatedJobs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage("Product Manager")))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := &fakeLLM{fallback: fmt.Sprintf(`{
		"jobs": [{"title": "Product Manager", "location": "Paris", "url": "/jobs/1"}],
		"next_page_url": "%s/gone"
	}`, server.URL)}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL+"/a", "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Len(t, result.Jobs, 1)
}

func TestRun_InvalidPayloadYieldsZeroResults(t *testing.T) {
	body := listingPage("Product Manager")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := &fakeLLM{fallback: `{"listings": "not the agreed shape"}`}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL, "Acme", "")
	require.NoError(t, err, "malformed model output must not surface as a scrape failure")

	assert.Equal(t, StatusOK, result.Status)
	assert.Empty(t, result.Jobs)
	assert.Equal(t, fetch.Fingerprint([]byte(body)), result.Fingerprint,
		"the fingerprint must land so an unchanged page skips the model next run")
}

func TestRun_LLMFailureYieldsZeroResults(t *testing.T) {
	body := listingPage("Product Manager")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client := &fakeLLM{err: errors.New("service unavailable")}
	e := New(client)
	e.FetchOpts.Client = server.Client()

	result, err := e.Run(context.Background(), server.URL, "Acme", "")
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	assert.Empty(t, result.Jobs)
	assert.Equal(t, fetch.Fingerprint([]byte(body)), result.Fingerprint)
}

func TestIsShellPage(t *testing.T) {
	longText := strings.Repeat("Open product roles across our teams. ", 20)

	tests := []struct {
		name  string
		body  string
		text  string
		shell bool
	}{
		{"tiny text", "<html></html>", "almost nothing", true},
		{"signal plus short text", "<html>Loading...</html>", strings.Repeat("x", 200), true},
		{"signal but long text", "<html>Loading...</html>", longText, false},
		{"no signal, medium text", "<html><body>jobs</body></html>", strings.Repeat("x", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shell, isShellPage([]byte(tt.body), tt.text))
		})
	}
}
