package tui

import (
	"fmt"
	"strings"
)

// detailMinWidth is the terminal width from which the detail pane is
// shown next to the timeline.
const detailMinWidth = 100

// renderDetail renders the selected status in full (right side).
func renderDetail(status *StatusBindingModel, width, height int) string {
	title := panelTitleStyle.Render("Status")

	if status == nil {
		return title + "\n\n" +
			emptyStateStyle.Render("Select a status to view details.")
	}

	var lines []string
	lines = append(lines, title, "")

	lines = append(lines, detailRow("Name", status.DisplayName))
	lines = append(lines, detailRow("User", "@"+status.Username))
	lines = append(lines, detailRow("ID", shortID(status.ID, 16)))
	if status.Avatar != "" {
		lines = append(lines, detailRow("Avatar", truncateEnd(status.Avatar, width-8)))
	}

	// ── Content ──

	if status.Content != "" {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render("Content"))
		wrapped := detailValueStyle.Width(width).Render(status.Content)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}

	// ── Media ──

	if n := len(status.AttachmentMediaList); n > 0 {
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render(fmt.Sprintf("Media (%d)", n)))
		for i, m := range status.AttachmentMediaList {
			desc := m.Description
			if desc == "" {
				desc = "no description"
			}
			lines = append(lines, detailValueStyle.Render(
				truncateEnd(fmt.Sprintf("%d. %s  %s", i+1, m.Type, desc), width)))
			lines = append(lines, detailDimStyle.Render(truncateEnd("   "+m.URL, width)))
		}
	}

	// Truncate to available height
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// renderDetailPanel wraps detail in a styled panel.
func renderDetailPanel(status *StatusBindingModel, width, height int) string {
	content := renderDetail(status, width-4, height-2)
	return panelStyle.Width(width).Height(height).Render(content)
}

func detailRow(label, value string) string {
	return detailLabelStyle.Render(fmt.Sprintf("%-7s", label)) + " " + detailValueStyle.Render(value)
}
