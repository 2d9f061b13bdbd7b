// Package durfmt formats durations for the stopwatch and totals displays.
package durfmt

import (
	"fmt"
	"time"
)

// Short renders whole minutes as "1h 5m", "2h" or "7m". Seconds are dropped.
func Short(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// Seconds is Short for a seconds count as stored in daily_totals.
func Seconds(secs float64) string {
	return Short(time.Duration(secs * float64(time.Second)))
}

// Clock renders HH:MM:SS.cc; hours are not wrapped at 24.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / (10 * time.Millisecond))
	h := cs / 360000
	m := (cs / 6000) % 60
	s := (cs / 100) % 60
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, s, cs%100)
}

// HMS renders HH:MM:SS for report tables.
func HMS(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	total := int64(secs + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
