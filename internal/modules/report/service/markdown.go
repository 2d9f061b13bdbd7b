package service

import (
	"fmt"
	"strings"

	"activitylog/internal/modules/report/domain"
	"activitylog/internal/platform/durfmt"
)

const (
	sectionTotals   = "totals"
	sectionSessions = "sessions"
	clockLayout     = "15:04:05"
	stampLayout     = "2006-01-02 15:04:05"
)

func totalsTable(lines []domain.Line) string {
	if len(lines) == 0 {
		return "_No time recorded._"
	}
	var b strings.Builder
	b.WriteString("| Activity | Time | Minutes |\n")
	b.WriteString("| --- | --- | ---: |\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "| %s | %s | %.2f |\n", cell(l.Activity), durfmt.Seconds(l.Seconds), l.Minutes())
	}
	total := domain.Line{Seconds: domain.Sum(lines)}
	fmt.Fprintf(&b, "| **Total** | **%s** | **%.2f** |\n", durfmt.Seconds(total.Seconds), total.Minutes())
	return b.String()
}

func sessionsTable(sessions []domain.SessionLine, layout string) string {
	if len(sessions) == 0 {
		return "_No sessions._"
	}
	var b strings.Builder
	b.WriteString("| Activity | Start | End | Duration |\n")
	b.WriteString("| --- | --- | --- | ---: |\n")
	for _, s := range sessions {
		end := s.End.Format(layout)
		if s.Live {
			end += " (live)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(s.Activity), s.Start.Format(layout), end, durfmt.HMS(s.DurationSec))
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
