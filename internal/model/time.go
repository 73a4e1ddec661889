package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the persisted timestamp format: UTC, microsecond
// precision, fixed width. Fixed width keeps ORDER BY timestamp correct.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// DateLayout is the format for purchase dates.
const DateLayout = "2006-01-02"

// naiveLayouts are accepted for caller-supplied timestamps without a zone.
// They are interpreted as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps, naive ISO-8601 date-times
// (treated as UTC), SQLite's "YYYY-MM-DD HH:MM:SS" and bare dates.
// The result is always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, NewValidationError("timestamp", "timestamp is empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError("timestamp", fmt.Sprintf("unrecognized timestamp %q", s))
}

// NormalizeTimestamp parses s and re-renders it in TimestampLayout.
func NormalizeTimestamp(s string) (string, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t), nil
}

// ParsePurchaseDate parses an ISO date or date-time.
func ParsePurchaseDate(s string) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return time.Time{}, NewValidationError("purchase_date", fmt.Sprintf("invalid purchase date %q", s))
	}
	return t, nil
}
