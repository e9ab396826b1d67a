// Package availability implements the accessory availability and allocation
// engine: pool assignment, out-of-service capacity removal, cross-filter
// daily allocation aggregation, per-day availability calculation, and the
// commit-time capacity validator.
package availability

import (
	"fmt"
	"time"

	"github.com/filter-tracker/backend/internal/storage/models"
)

// ParseDay parses a YYYY-MM-DD calendar day string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(models.DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", s, err)
	}
	return t, nil
}

// EnumerateDays returns every calendar day from start to end inclusive, as
// YYYY-MM-DD strings. An empty range (end before start) returns an empty
// slice rather than an error; malformed dates return an error.
func EnumerateDays(start, end string) ([]string, error) {
	from, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDay(end)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(models.DayLayout))
	}
	return days, nil
}

// ValidDay reports whether s is a well-formed YYYY-MM-DD day string.
func ValidDay(s string) bool {
	_, err := time.Parse(models.DayLayout, s)
	return err == nil
}
