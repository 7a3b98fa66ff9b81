package tui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	"github.com/charmbracelet/lipgloss"
)

// Cell sizes of the images in a row.
const (
	avatarCols = 4
	avatarRows = 2

	thumbCols = 12
	thumbRows = 4

	// mediaSpacerCols separates consecutive thumbnails.
	mediaSpacerCols = 1
)

// avatarUserAgent is sent with avatar requests; some hosts refuse
// requests without a browser-like agent.
const avatarUserAgent = "Mozilla/5.0"

// ImageSource returns the drawable to show for an image request: the
// loaded image when available, otherwise the request's placeholder.
type ImageSource interface {
	Drawable(req imageloader.Request) imageloader.Drawable
}

// loadedImages maps request URLs to loaded drawables.
type loadedImages map[string]imageloader.Drawable

func (l loadedImages) Drawable(req imageloader.Request) imageloader.Drawable {
	if d, ok := l[req.URL]; ok && d != nil {
		return d
	}
	return req.Placeholder
}

func avatarRequest(url string) imageloader.Request {
	return imageloader.Request{
		URL:         url,
		Placeholder: avatarPlaceholder,
		Error:       avatarPlaceholder,
		Fallback:    avatarPlaceholder,
		Headers:     http.Header{"User-Agent": []string{avatarUserAgent}},
	}
}

func mediaRequest(m MediaBindingModel) imageloader.Request {
	return imageloader.Request{
		URL:         m.URL,
		Placeholder: mediaPlaceholder,
		Error:       mediaError,
		Fallback:    mediaPlaceholder,
	}
}

// rowLayout is the per-row rendering input besides the status itself.
type rowLayout struct {
	width       int
	mediaOffset int
	selected    bool
}

// StatusRow renders one status at the given width: avatar, name line,
// wrapped content and the media strip scrolled to its start.
func StatusRow(status StatusBindingModel, width int, images ImageSource) string {
	return renderStatusRow(status, rowLayout{width: width}, images)
}

func renderStatusRow(status StatusBindingModel, layout rowLayout, images ImageSource) string {
	style := rowStyle
	if layout.selected {
		style = rowSelectedStyle
	}

	textWidth := rowTextWidth(layout.width)

	avatar := images.Drawable(avatarRequest(status.Avatar)).Render(avatarCols, avatarRows)

	parts := []string{renderNameLine(status.DisplayName, status.Username, textWidth)}
	if status.Content != "" {
		parts = append(parts, contentStyle.Width(textWidth).Render(status.Content))
	}
	if strip := renderMediaStrip(status.AttachmentMediaList, layout.mediaOffset, textWidth, images); strip != "" {
		parts = append(parts, strip)
	}

	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", body))
}

// rowTextWidth is the width left for text in a row of the given width:
// one column for the row marker, the avatar and one column of spacing.
func rowTextWidth(width int) int {
	return maxInt(1, width-1-avatarCols-1)
}

// renderNameLine renders "DisplayName @username" on a single line. The
// display name has full emphasis and the handle reduced emphasis; text
// wider than width ends in "…".
func renderNameLine(displayName, username string, width int) string {
	if width <= 0 {
		return ""
	}
	displayName = singleLine(displayName)
	handle := " @" + singleLine(username)

	plain := displayName + handle
	line := truncateEnd(plain, width)
	if line == plain {
		return displayNameStyle.Render(displayName) + usernameStyle.Render(handle)
	}

	kept := strings.TrimSuffix(line, ellipsis)
	if len(kept) <= len(displayName) {
		return displayNameStyle.Render(kept + ellipsis)
	}
	return displayNameStyle.Render(displayName) + usernameStyle.Render(kept[len(displayName):]+ellipsis)
}

// visibleMedia returns the half-open index range of thumbnails that fit
// in width starting at offset.
func visibleMedia(count, offset, width int) (start, end int) {
	if count == 0 {
		return 0, 0
	}
	fit := maxInt(1, (width+mediaSpacerCols)/(thumbCols+mediaSpacerCols))
	start = clamp(offset, 0, maxInt(0, count-fit))
	end = minInt(count, start+fit)
	return start, end
}

// renderMediaStrip draws the thumbnails in the visible window, each
// followed by a fixed spacer, and a caption when some are scrolled out
// of view. Only visible thumbnails are rendered.
func renderMediaStrip(media []MediaBindingModel, offset, width int, images ImageSource) string {
	if len(media) == 0 {
		return ""
	}
	start, end := visibleMedia(len(media), offset, width)

	spacer := strings.TrimSuffix(strings.Repeat(strings.Repeat(" ", mediaSpacerCols)+"\n", thumbRows), "\n")
	var cells []string
	for _, m := range media[start:end] {
		thumb := images.Drawable(mediaRequest(m)).Render(thumbCols, thumbRows)
		cells = append(cells, thumb, spacer)
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Top, cells...)

	if end-start < len(media) {
		left, right := " ", " "
		if start > 0 {
			left = "◂"
		}
		if end < len(media) {
			right = "▸"
		}
		caption := fmt.Sprintf("%s %d-%d of %d %s", left, start+1, end, len(media), right)
		strip = lipgloss.JoinVertical(lipgloss.Left, strip, mediaCaptionStyle.Render(caption))
	}
	return strip
}

// visibleMediaRequests returns the requests for the thumbnails that
// renderMediaStrip would show.
func visibleMediaRequests(media []MediaBindingModel, offset, width int) []imageloader.Request {
	start, end := visibleMedia(len(media), offset, width)
	reqs := make([]imageloader.Request, 0, end-start)
	for _, m := range media[start:end] {
		reqs = append(reqs, mediaRequest(m))
	}
	return reqs
}
