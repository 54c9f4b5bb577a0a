package fetch

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText_PreservesLinkTargets(t *testing.T) {
	html := `<html><body>
		<h1>Open Roles</h1>
		<ul>
			<li><a href="/jobs/123">Senior Product Manager</a> Berlin</li>
			<li><a href="https://example.com/jobs/456">Product Lead</a> Remote</li>
		</ul>
	</body></html>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Senior Product Manager (/jobs/123)")
	assert.Contains(t, text, "Product Lead (https://example.com/jobs/456)")
}

func TestHTMLToText_DropsImagesAndScripts(t *testing.T) {
	html := `<html><body>
		<script>var hidden = "nope";</script>
		<style>.x { color: red }</style>
		<img src="logo.png" alt="logo">
		<p>Visible text</p>
	</body></html>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Visible text")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "logo.png")
	assert.NotContains(t, text, "color: red")
}

func TestHTMLToText_SkipsFragmentAndEmptyAnchors(t *testing.T) {
	html := `<body><a href="#top">Back to top</a><a href="/jobs"></a><p>x</p></body>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.NotContains(t, text, "#top")
	assert.Contains(t, text, "Back to top")
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("listing line\n", 100)

	out := Truncate(text, 200)
	assert.LessOrEqual(t, len(out), 200)
	// Cut lands on a line boundary.
	assert.False(t, strings.HasSuffix(out, "listi"))
	assert.True(t, strings.HasSuffix(out, "listing line"))

	short := "short"
	assert.Equal(t, short, Truncate(short, 200))
}

func TestTruncate_NeverSplitsRunes(t *testing.T) {
	// No newlines, so the cut falls in the middle of the text; each rune is
	// two bytes, so an odd budget lands inside one.
	text := strings.Repeat("é", 100)

	for _, n := range []int{7, 8, 33} {
		out := Truncate(text, n)
		assert.LessOrEqual(t, len(out), n)
		assert.True(t, utf8.ValidString(out), "budget %d", n)
	}
}
