package tui

import (
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/charmbracelet/lipgloss"
)

func TestBindingModelDisplayNameFallback(t *testing.T) {
	s := toStatusBindingModel(model.Status{
		ID:      "9",
		Account: model.Account{Username: "bob"},
		MediaAttachments: []model.Media{
			{ID: "m", Type: "image", URL: "https://example/m.png", Description: "d"},
		},
	})
	if s.DisplayName != "bob" {
		t.Errorf("DisplayName = %q, want username", s.DisplayName)
	}
	if len(s.AttachmentMediaList) != 1 || s.AttachmentMediaList[0].URL != "https://example/m.png" {
		t.Errorf("media = %+v", s.AttachmentMediaList)
	}
}

func TestEmptyUiState(t *testing.T) {
	s := EmptyPublicTimelineUiState()
	if s.StatusList == nil || len(s.StatusList) != 0 {
		t.Errorf("StatusList = %#v, want empty non-nil", s.StatusList)
	}
	if s.IsLoading || s.IsRefreshing || s.Err != nil {
		t.Errorf("state = %+v, want idle", s)
	}
}

func TestStatusRowBasic(t *testing.T) {
	status := toStatusBindingModel(shutaStatus())
	out := StatusRow(status, 60, loadedImages{})

	for _, want := range []string{"Shuta @884shuta", "hello", "░"} {
		if !strings.Contains(out, want) {
			t.Errorf("row missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "·") {
		t.Errorf("row without media shows a thumbnail:\n%s", out)
	}
}

func TestStatusRowShowsLoadedAvatar(t *testing.T) {
	status := toStatusBindingModel(shutaStatus())
	images := loadedImages{"https://example/a.png": imageloader.Fill{Glyph: "A"}}

	out := StatusRow(status, 60, images)
	if !strings.Contains(out, "AAAA") {
		t.Errorf("loaded avatar not drawn:\n%s", out)
	}
	if strings.Contains(out, "░") {
		t.Errorf("placeholder still drawn:\n%s", out)
	}
}

func TestNameLineTruncates(t *testing.T) {
	long := strings.Repeat("Very Long Display Name ", 5)
	line := renderNameLine(long, "someone", 20)

	if strings.Contains(line, "\n") {
		t.Errorf("name line wraps: %q", line)
	}
	if w := lipgloss.Width(line); w > 20 {
		t.Errorf("width = %d, want <= 20", w)
	}
	if !strings.HasSuffix(line, ellipsis) {
		t.Errorf("line = %q, want ellipsis", line)
	}
}

func TestNameLineTruncatesInsideHandle(t *testing.T) {
	line := renderNameLine("Al", "a_rather_long_handle", 10)
	if line != "Al @a_rat…" {
		t.Errorf("line = %q", line)
	}
}

func TestStatusRowLongNameStaysOnOneLine(t *testing.T) {
	s := toStatusBindingModel(shutaStatus())
	s.DisplayName = strings.Repeat("Name", 30)

	out := StatusRow(s, 40, loadedImages{})
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[0], ellipsis) {
		t.Errorf("first line = %q, want truncated name", lines[0])
	}
	if strings.Contains(strings.Join(lines[1:], "\n"), "@884shuta") {
		t.Errorf("handle spilled onto another line:\n%s", out)
	}
}

func TestMediaStripOrder(t *testing.T) {
	s := toStatusBindingModel(shutaStatus())
	s.AttachmentMediaList = []MediaBindingModel{
		{ID: "a", URL: "https://example/1.png"},
		{ID: "b", URL: "https://example/2.png"},
		{ID: "c", URL: "https://example/3.png"},
	}
	images := loadedImages{
		"https://example/1.png": imageloader.Fill{Glyph: "A"},
		"https://example/2.png": imageloader.Fill{Glyph: "B"},
		"https://example/3.png": imageloader.Fill{Glyph: "C"},
	}

	out := StatusRow(s, 60, images)
	a := strings.Index(out, strings.Repeat("A", thumbCols))
	b := strings.Index(out, strings.Repeat("B", thumbCols))
	c := strings.Index(out, strings.Repeat("C", thumbCols))
	if a < 0 || b < 0 || c < 0 {
		t.Fatalf("missing thumbnails:\n%s", out)
	}
	if !(a < b && b < c) {
		t.Errorf("thumbnails out of order: %d %d %d", a, b, c)
	}
	if strings.Contains(out, " of ") {
		t.Errorf("caption shown although all media fit:\n%s", out)
	}
}

func TestMediaStripPlaceholders(t *testing.T) {
	media := []MediaBindingModel{{URL: "https://example/1.png"}, {URL: "https://example/2.png"}}
	strip := renderMediaStrip(media, 0, 60, loadedImages{})

	if got := strings.Count(strings.Split(strip, "\n")[0], strings.Repeat("·", thumbCols)); got != 2 {
		t.Errorf("placeholder thumbnails = %d, want 2:\n%s", got, strip)
	}
	if h := lipgloss.Height(strip); h != thumbRows {
		t.Errorf("strip height = %d, want %d", h, thumbRows)
	}
}

func TestMediaStripScrolls(t *testing.T) {
	var media []MediaBindingModel
	for _, u := range []string{"1", "2", "3", "4", "5"} {
		media = append(media, MediaBindingModel{URL: "https://example/" + u})
	}

	// Room for one thumbnail.
	strip := renderMediaStrip(media, 0, thumbCols, loadedImages{})
	if !strings.Contains(strip, "1-1 of 5 ▸") {
		t.Errorf("caption at start:\n%s", strip)
	}

	strip = renderMediaStrip(media, 2, thumbCols, loadedImages{})
	if !strings.Contains(strip, "◂ 3-3 of 5 ▸") {
		t.Errorf("caption in the middle:\n%s", strip)
	}

	strip = renderMediaStrip(media, 99, thumbCols, loadedImages{})
	if !strings.Contains(strip, "◂ 5-5 of 5") {
		t.Errorf("offset not clamped:\n%s", strip)
	}
}

func TestVisibleMedia(t *testing.T) {
	tests := []struct {
		count, offset, width int
		start, end           int
	}{
		{0, 0, 100, 0, 0},
		{3, 0, 100, 0, 3},
		{5, 0, 2*thumbCols + mediaSpacerCols, 0, 2},
		{5, 4, 2*thumbCols + mediaSpacerCols, 3, 5},
		{5, -3, 2*thumbCols + mediaSpacerCols, 0, 2},
		{2, 0, 1, 0, 1},
	}
	for _, tt := range tests {
		start, end := visibleMedia(tt.count, tt.offset, tt.width)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleMedia(%d, %d, %d) = %d, %d; want %d, %d",
				tt.count, tt.offset, tt.width, start, end, tt.start, tt.end)
		}
	}
}

func TestAvatarRequest(t *testing.T) {
	req := avatarRequest("https://example/a.png")
	if req.URL != "https://example/a.png" {
		t.Errorf("URL = %q", req.URL)
	}
	if got := req.Headers.Get("User-Agent"); got != avatarUserAgent {
		t.Errorf("User-Agent = %q", got)
	}

	want := avatarPlaceholder.Render(avatarCols, avatarRows)
	for name, d := range map[string]imageloader.Drawable{
		"placeholder": req.Placeholder,
		"error":       req.Error,
		"fallback":    req.Fallback,
	} {
		if d == nil {
			t.Fatalf("%s drawable is nil", name)
		}
		if got := d.Render(avatarCols, avatarRows); got != want {
			t.Errorf("%s = %q, want avatar placeholder", name, got)
		}
	}
}

func TestMediaRequest(t *testing.T) {
	req := mediaRequest(MediaBindingModel{URL: "https://example/m.png"})
	if req.Error.Render(1, 1) != mediaError.Render(1, 1) {
		t.Errorf("error drawable = %q", req.Error.Render(1, 1))
	}
	if req.Placeholder.Render(1, 1) != mediaPlaceholder.Render(1, 1) {
		t.Errorf("placeholder drawable = %q", req.Placeholder.Render(1, 1))
	}
	if len(req.Headers) != 0 {
		t.Errorf("media request headers = %v", req.Headers)
	}
}

func TestDetailRendersMedia(t *testing.T) {
	s := toStatusBindingModel(bobStatus())
	out := renderDetail(&s, 60, 0)
	for _, want := range []string{"@bob", "photos from the trip", "Media (1)", "beach", "https://example/m1.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}

	if out := renderDetail(nil, 60, 0); !strings.Contains(out, "Select a status") {
		t.Errorf("empty detail = %q", out)
	}
}
