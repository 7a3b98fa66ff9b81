package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// ellipsis marks truncated text.
const ellipsis = "…"

// truncateEnd cuts s to at most width terminal cells, ending in "…" when
// anything was dropped. Wide runes are measured by display width.
func truncateEnd(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// singleLine collapses line breaks so s renders on one line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// shortID returns first n characters of an ID string.
func shortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
