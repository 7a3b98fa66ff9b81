package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader produces the top bar:
//
//	YATTER  │  Public Timeline  │  40 statuses
func renderHeader(width int, meta ...string) string {
	parts := []string{headerBrandStyle.Render("YATTER")}
	sep := headerSepStyle.Render(" │ ")

	for _, m := range meta {
		if m == "" {
			continue
		}
		parts = append(parts, sep, headerMetaStyle.Render(m))
	}

	return headerBarStyle.Width(width).Render(strings.Join(parts, ""))
}

// renderFooter produces the bottom status bar: a status message on the
// left and keyboard hints on the right. The hints are dropped first when
// the terminal is too narrow for both.
func renderFooter(width int, status string, hints []hint) string {
	right := renderHints(hints)

	gap := width - lipgloss.Width(status) - lipgloss.Width(right)
	if gap < 0 {
		right = ""
		gap = maxInt(0, width-lipgloss.Width(status))
	}

	bar := status + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(width).
		MaxWidth(width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
