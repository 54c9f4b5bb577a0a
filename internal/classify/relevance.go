package classify

import "strings"

// includeTitleKeywords marks a title as a product-management role.
var includeTitleKeywords = []string{
	"product manager", "product management", "group product", "staff pm",
	"senior pm", "principal pm", "product lead", "vp product", "vp of product",
	"head of product", "chief product", "cpo", "product owner",
	"technical product", "growth pm", "platform pm", "ai pm",
}

// excludeTitleKeywords overrides the include list; adjacent disciplines that
// happen to share words with PM titles.
var excludeTitleKeywords = []string{
	"product marketing", "product analyst", "data analyst",
	"software engineer", "engineering manager", "designer",
	"product operations analyst",
}

// IsRelevantRole reports whether a job title is a product-management role the
// aggregator should keep. The exclude list takes precedence: a "Product
// Marketing Manager" is rejected even though it contains "product manager"
// fragments.
func IsRelevantRole(title string) bool {
	t := strings.ToLower(title)
	if containsAny(t, excludeTitleKeywords) {
		return false
	}
	return containsAny(t, includeTitleKeywords)
}
