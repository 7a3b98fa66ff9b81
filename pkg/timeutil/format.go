// Package timeutil formats timestamps for the timeline, the CLI and
// digest reports.
//
// Sync runs store Unix milliseconds; statuses carry time.Time. A zero
// time.Time means the server did not send one and formats as "".
package timeutil

import (
	"fmt"
	"time"
)

// FromMillis converts a Unix millisecond timestamp to time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatTimestamp formats t for list views. Format: "2006-01-02 15:04".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatMillis formats a Unix millisecond timestamp with seconds.
func FormatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return FromMillis(ms).Local().Format("2006-01-02 15:04:05")
}

// FormatDuration formats a duration to a short human-readable string.
// Examples: "450ms", "1.2s", "2m 15.3s", "3h 5m"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	if d < time.Hour {
		minutes := int(seconds / 60)
		remaining := seconds - float64(minutes*60)
		return fmt.Sprintf("%dm %.1fs", minutes, remaining)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - hours*60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// RelativeTime describes t relative to now.
// Examples: "just now", "5s", "2m", "1h", "3d"
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	default:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd", days)
	}
}
