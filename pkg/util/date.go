package util

import (
	"strconv"
	"time"
)

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day.
func Today() time.Time {
	return DayOf(time.Now())
}

// FormatDay renders a timestamp as a calendar date.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// ParseDay parses "2006-01-02", falling back to RFC3339 and unix seconds.
// Returns (t, true) if any worked; the result is truncated to the day.
func ParseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DayFormat, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayOf(t), true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return DayOf(time.Unix(ts, 0)), true
	}
	return time.Time{}, false
}

// ParseDayDefault parses a day or returns default if empty/invalid.
func ParseDayDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDay(s); ok {
		return t
	}
	return def
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
