package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for compact columns.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDateTime formats a timestamp in local time (2006-01-02 15:04:05).
// The zero time renders as "-".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatClock formats a timestamp as a wall clock (15:04:05).
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Local().Format("15:04:05")
}

// FormatFingerprint renders a snapshot fingerprint as fixed-width hex.
func FormatFingerprint(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}
