package domain

import (
	"math"
	"time"
)

// Stored text layouts. Timestamps are local wall-clock time without zone.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// State is the tracker's in-memory view of the live session. The zero value
// is Idle.
type State struct {
	Running          bool
	ActivityID       int64
	ActivityName     string
	StartTime        time.Time
	LiveSessionID    int64
	LastReconciledAt time.Time
}

// Elapsed is now minus StartTime, never negative, zero when Idle.
func (s State) Elapsed(now time.Time) time.Duration {
	if !s.Running {
		return 0
	}
	d := now.Sub(s.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Effective returns now, or LastReconciledAt when the clock reads earlier.
func (s State) Effective(now time.Time) time.Time {
	if now.Before(s.LastReconciledAt) {
		return s.LastReconciledAt
	}
	return now
}

type Session struct {
	ID           int64
	ActivityID   int64
	ActivityName string
	Start        time.Time
	End          time.Time
	DurationSec  float64
}

type DailyTotal struct {
	Date         string
	ActivityID   int64
	ActivityName string
	Seconds      float64
}

// NextMidnight is the start of the calendar day after t in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, loc)
}

// DurationSeconds rounds d to hundredths of a second, clamped at zero.
func DurationSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(d.Seconds()*100) / 100
}
