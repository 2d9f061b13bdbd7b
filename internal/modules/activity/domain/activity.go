package domain

import (
	"fmt"
	"sort"
	"strings"

	apperrors "activitylog/internal/platform/errors"
)

// CustomName is the picker entry that prompts for a free-form name. It is
// stored like any other activity.
const CustomName = "Custom"

type Activity struct {
	ID   int64
	Name string
}

func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("activity name is required: %w", apperrors.ErrInvalidInput)
	}
	return trimmed, nil
}

func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func IsCustom(name string) bool {
	return SameName(name, CustomName)
}

// SortNames orders activities case-insensitively, ties broken by id.
func SortNames(activities []Activity) []string {
	sorted := append([]Activity(nil), activities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := strings.ToLower(sorted[i].Name), strings.ToLower(sorted[j].Name)
		if li != lj {
			return li < lj
		}
		return sorted[i].ID < sorted[j].ID
	})
	names := make([]string, 0, len(sorted))
	for _, a := range sorted {
		names = append(names, a.Name)
	}
	return names
}

// PickerOrder moves the Custom entry to the end of an alphabetical list.
func PickerOrder(names []string) []string {
	out := make([]string, 0, len(names)+1)
	for _, n := range names {
		if !IsCustom(n) {
			out = append(out, n)
		}
	}
	return append(out, CustomName)
}

// FirstSelectable returns the first name that is not Custom.
func FirstSelectable(names []string) (string, bool) {
	for _, n := range names {
		if !IsCustom(n) {
			return n, true
		}
	}
	return "", false
}
