package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in report labels.
const DateLayout = "2006-01-02"

// NormalizeDate truncates t to its calendar day, expressed as midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := NormalizeDate(t)
	return day.AddDate(0, 0, -DayIndex(day))
}

// DayIndex maps Monday..Sunday to 0..6.
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekday reports whether t falls Monday through Friday.
func IsWeekday(t time.Time) bool {
	return DayIndex(t) <= 4
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and normalises to the calendar day.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return NormalizeDate(t), nil
}
