package types

import (
	"fmt"
	"strings"
	"time"
)

const (
	periodLayout = "2006-01"
	dateLayout   = "2006-01-02"
)

// ParsePeriod accepts "YYYY-MM" or "YYYY-MM-DD" and returns the first day of that month (UTC).
func ParsePeriod(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("period is required")
	}

	layout := periodLayout
	if len(s) > len(periodLayout) {
		layout = dateLayout
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: expected YYYY-MM or YYYY-MM-DD", s)
	}
	return MonthStart(t), nil
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// FormatPeriod renders a period as "YYYY-MM".
func FormatPeriod(t time.Time) string {
	return t.Format(periodLayout)
}

// FormatDate renders a date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses "YYYY-MM-DD" into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
