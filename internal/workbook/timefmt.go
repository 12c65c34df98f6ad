package workbook

import (
	"fmt"
	"strings"
	"time"
)

// MinuteLayout is the datetime-local layout the tracker has always written.
const MinuteLayout = "2006-01-02T15:04"

// DateLayout is a bare calendar date, read as midnight UTC.
const DateLayout = "2006-01-02"

var timeLayouts = []string{
	MinuteLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// FormatTime renders t for a workbook cell. Zero times render empty.
// Whole-minute UTC times use MinuteLayout, everything else RFC 3339.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Location() == time.UTC && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(MinuteLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// ParseTime parses a workbook cell. Layouts without a zone are read as UTC.
// The empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// EndOfDay parses s like ParseTime, except that a bare date yields the last
// instant of that day so it can close an inclusive range.
func EndOfDay(s string) (time.Time, error) {
	t, err := ParseTime(s)
	if err != nil {
		return t, err
	}
	if _, dateOnly := time.Parse(DateLayout, strings.TrimSpace(s)); dateOnly == nil {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
