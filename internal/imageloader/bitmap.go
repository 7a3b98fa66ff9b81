package imageloader

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// Drawable renders itself into a block of terminal cells.
type Drawable interface {
	Render(cols, rows int) string
}

// Fill is a drawable made of a single repeated glyph.
type Fill struct {
	Glyph string
	Style lipgloss.Style
}

// Render draws rows lines of cols glyphs.
func (f Fill) Render(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	line := f.Style.Render(strings.Repeat(f.Glyph, cols))
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// halfBlock draws the top pixel of a cell as foreground and the bottom
// pixel as background.
const halfBlock = "▀"

type cellSize struct{ cols, rows int }

// Bitmap is a decoded image. Each terminal cell shows two vertically
// stacked pixels.
type Bitmap struct {
	src image.Image

	mu       sync.Mutex
	rendered map[cellSize]string
}

// NewBitmap wraps a decoded image.
func NewBitmap(img image.Image) *Bitmap {
	return &Bitmap{src: img, rendered: make(map[cellSize]string)}
}

// Bounds returns the source image bounds.
func (b *Bitmap) Bounds() image.Rectangle {
	return b.src.Bounds()
}

// Render scales the image to cols x rows cells.
func (b *Bitmap) Render(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	key := cellSize{cols, rows}

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.rendered[key]; ok {
		return s
	}

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), b.src, b.src.Bounds(), draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := dst.RGBAAt(x, 2*y)
			bottom := dst.RGBAAt(x, 2*y+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render(halfBlock))
		}
	}

	s := sb.String()
	b.rendered[key] = s
	return s
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
