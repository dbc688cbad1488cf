// Package timeutil provides time formatting utilities for slidefigs.
//
// Render runs and artifacts are stored with Unix nanosecond timestamps
// (int64); this package turns them into the strings shown by the CLI,
// the TUI and the history report.
package timeutil

import (
	"fmt"
	"time"
)

// LongDate is the layout stamped on figures, e.g. "March 07, 2025".
const LongDate = "January 02, 2006"

// FromNano converts a Unix nanosecond timestamp to time.Time.
func FromNano(ns int64) time.Time {
	return time.Unix(0, ns)
}

// ToNano converts a time.Time to Unix nanoseconds.
func ToNano(t time.Time) int64 {
	return t.UnixNano()
}

// FormatLongDate formats t with LongDate.
func FormatLongDate(t time.Time) string {
	return t.Format(LongDate)
}

// FormatTimestampFull formats a Unix nanosecond timestamp with date.
// Format: "2006-01-02 15:04:05"
func FormatTimestampFull(ns int64) string {
	if ns == 0 {
		return "-"
	}
	return FromNano(ns).Format("2006-01-02 15:04:05")
}

// FormatDuration formats a duration in milliseconds.
// Examples: "450ms", "1.2s", "2m 15.3s"
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	minutes := int(seconds / 60)
	remaining := seconds - float64(minutes*60)
	return fmt.Sprintf("%dm %.1fs", minutes, remaining)
}

// RelativeTime returns how long ago ns was, relative to now.
// Examples: "just now", "5s ago", "2m ago", "1h ago", "3d ago"
func RelativeTime(ns int64, now time.Time) string {
	if ns == 0 {
		return "never"
	}
	diff := now.Sub(FromNano(ns))

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
