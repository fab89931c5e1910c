package utils

import (
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\-.\w\s]`)
	slugSeparate = regexp.MustCompile(`[\-.\s]+`)
)

// Slugify converts a display name into a NetBox slug.
// Characters other than word characters, dashes, dots and whitespace are dropped,
// runs of dashes, dots and whitespace collapse into a single dash.
func Slugify(value string) string {
	s := slugStrip.ReplaceAllString(value, "")
	s = slugSeparate.ReplaceAllString(s, "-")
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), "-"))
}
