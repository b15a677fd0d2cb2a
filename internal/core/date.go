package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// NewDate creates a UTC midnight time from year, month, day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string as UTC midnight. Full RFC 3339
// timestamps are accepted too, since the persistence layer stores them.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthKey returns the UTC calendar month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatMonth renders a YYYY-MM key as "June 2024". Unparseable keys are
// returned unchanged.
func FormatMonth(key string) string {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

// FormatLongDate renders a date as "June 5, 2024".
func FormatLongDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
