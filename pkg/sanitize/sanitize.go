package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all markup from user input and keeps line structure.
func Text(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "</p>", "\n")
	s = strings.ReplaceAll(s, "</div>", "\n")

	cleaned := html.UnescapeString(policy.Sanitize(s))
	return strings.TrimSpace(cleaned)
}

// Inline strips markup and collapses all whitespace, for indexing and titles.
func Inline(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}
