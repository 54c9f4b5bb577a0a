package fetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText converts markup to plain text for LLM consumption. Link targets
// are preserved inline as "anchor text (href)" so the model can return apply
// URLs; images, scripts, and styles are dropped.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, img, svg, iframe").Remove()

	// Rewrite anchors so the href survives the text flattening.
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		sel.SetText(fmt.Sprintf("%s (%s)", text, href))
	})

	// Block-level elements become line breaks so listings stay separable.
	doc.Find("p, div, li, tr, br, h1, h2, h3, h4, h5, h6, section, article").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	return cleanWhitespace(body.Text()), nil
}

// Truncate bounds text to at most n bytes. The cut lands on a line boundary
// where possible so the LLM never sees a half listing, and never splits a
// multibyte rune.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := text[:n]
	if idx := strings.LastIndexByte(cut, '\n'); idx > n/2 {
		return cut[:idx]
	}
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// cleanWhitespace trims lines and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
