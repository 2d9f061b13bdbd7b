package slug

import (
	"regexp"
	"strings"
)

const maxLen = 80

var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a report title into a lowercase file name stem.
func Make(title string) string {
	s := separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "report"
	}
	return s
}
