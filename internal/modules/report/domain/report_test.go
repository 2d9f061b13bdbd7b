package domain

import (
	"testing"
	"time"
)

func TestLineMinutes(t *testing.T) {
	t.Parallel()
	if got := (Line{Seconds: 90}).Minutes(); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	if got := (Line{Seconds: 100}).Minutes(); got != 1.67 {
		t.Fatalf("expected 1.67, got %v", got)
	}
}

func TestSortByName(t *testing.T) {
	t.Parallel()
	in := []Line{{"work", 1}, {"Break", 2}, {"study", 3}}
	got := SortByName(in)
	if got[0].Activity != "Break" || got[1].Activity != "study" || got[2].Activity != "work" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if in[0].Activity != "work" {
		t.Fatalf("input was mutated")
	}
	if Sum(in) != 6 {
		t.Fatalf("expected sum 6, got %v", Sum(in))
	}
}

func TestSortSessionsByStart(t *testing.T) {
	t.Parallel()
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	got := SortSessionsByStart([]SessionLine{
		{Activity: "b", Start: base.Add(time.Hour)},
		{Activity: "a", Start: base},
	})
	if got[0].Activity != "a" {
		t.Fatalf("expected oldest first, got %+v", got)
	}
}
