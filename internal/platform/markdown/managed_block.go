package markdown

import (
	"fmt"
	"strings"
)

// Markers returns the HTML comments that delimit a generated section.
func Markers(name string) (string, string) {
	return fmt.Sprintf("<!-- activitylog:%s:begin -->", name), fmt.Sprintf("<!-- activitylog:%s:end -->", name)
}

// ReplaceSection swaps the named generated section in body for content, or
// appends the section when body has none. Text outside the markers is kept.
func ReplaceSection(body, name, content string) string {
	begin, end := Markers(name)
	section := begin + "\n" + strings.TrimRight(content, "\n") + "\n" + end

	if i := strings.Index(body, begin); i >= 0 {
		if j := strings.Index(body[i:], end); j >= 0 {
			return body[:i] + section + body[i+j+len(end):]
		}
	}
	switch {
	case strings.TrimSpace(body) == "":
		return section + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + section + "\n"
	default:
		return body + "\n\n" + section + "\n"
	}
}
