package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	KindDaily   Kind = "daily"
	KindAllTime Kind = "all-time"
)

// Line is one activity's accumulated time.
type Line struct {
	Activity string
	Seconds  float64
}

// Minutes rounds to two decimals, as the summary view shows them.
func (l Line) Minutes() float64 {
	return math.Round(l.Seconds/60*100) / 100
}

type SessionLine struct {
	Activity    string
	Start       time.Time
	End         time.Time
	DurationSec float64
	Live        bool
}

type Daily struct {
	Date     time.Time
	Totals   []Line
	Sessions []SessionLine
}

type AllTime struct {
	Totals   []Line
	Sessions []SessionLine
}

func Sum(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Seconds
	}
	return total
}

// SortByName orders lines by activity name, case-insensitively.
func SortByName(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Activity) < strings.ToLower(out[j].Activity)
	})
	return out
}

// SortSessionsByStart orders sessions oldest first.
func SortSessionsByStart(sessions []SessionLine) []SessionLine {
	out := append([]SessionLine(nil), sessions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
