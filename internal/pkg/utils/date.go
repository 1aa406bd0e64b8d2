package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf returns the civil date of t as seen in loc, normalized to midnight UTC.
// Civil dates are kept in UTC so they compare and format the same way everywhere,
// including after a round-trip through a DATE column.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange returns every civil date from from to to, both inclusive.
func DateRange(from, to time.Time) []time.Time {
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func Ptr[T any](v T) *T {
	return &v
}
