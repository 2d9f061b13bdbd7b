package dto

import "time"

// DailyInput selects a calendar day; a zero Date means today. A non-empty
// OutPath writes the note to disk instead of rendering it for the terminal.
type DailyInput struct {
	Date    time.Time
	OutPath string
}

type AllTimeInput struct {
	// SessionLimit caps the listed sessions; 0 lists none.
	SessionLimit int
	OutPath      string
}

type ReportOutput struct {
	Kind     string
	Markdown string
	Rendered string
	Path     string
}
