package tui

import (
	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	"github.com/charmbracelet/lipgloss"
)

// ────────────────────────────────────────────────────────────
// Color palette: GitHub Dark
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgPanel   = lipgloss.Color("#161b22")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")

	// Structural
	colorDivider = lipgloss.Color("#30363d")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{Top: "─"}, true, false, false, false).
			BorderForeground(colorDivider)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)
)

// Status rows
var (
	rowStyle = lipgloss.NewStyle().
			Border(lipgloss.HiddenBorder(), false, false, false, true).
			MarginBottom(1)

	rowSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(colorBlue).
				MarginBottom(1)

	// Full emphasis.
	displayNameStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	// Reduced emphasis.
	usernameStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	contentStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mediaCaptionStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	avatarPlaceholderStyle = lipgloss.NewStyle().
				Foreground(colorDivider).
				Background(colorBgPanel)

	mediaPlaceholderStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Background(colorBgPanel)

	mediaErrorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Background(colorBgPanel)
)

// Detail pane
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	detailDimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Login form
var (
	formTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true).
			MarginBottom(1)

	formLabelStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Width(10)

	formFieldStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1).
			Width(30)

	formFieldFocusedStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorBgPanel).
				Border(lipgloss.Border{Left: "▌"}, false, false, false, true).
				BorderForeground(colorBlue).
				Padding(0, 1).
				Width(30)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorBg).
			Background(colorBlue).
			Bold(true).
			Padding(0, 2).
			MarginTop(1)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Background(colorBgSurface).
				Padding(0, 2).
				MarginTop(1)

	cursorStyle = lipgloss.NewStyle().
			Background(colorBlue).
			Foreground(colorBg)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusBusyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Background(colorBgSurface).
			Padding(0, 1)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Background(colorBgSurface).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(2, 4)
)

// ────────────────────────────────────────────────────────────
// Drawables
// ────────────────────────────────────────────────────────────

var (
	// avatarPlaceholder stands in for an avatar while loading, on error and
	// when the account has none.
	avatarPlaceholder imageloader.Drawable = imageloader.Fill{Glyph: "░", Style: avatarPlaceholderStyle}

	mediaPlaceholder imageloader.Drawable = imageloader.Fill{Glyph: "·", Style: mediaPlaceholderStyle}
	mediaError       imageloader.Drawable = imageloader.Fill{Glyph: "╳", Style: mediaErrorStyle}
)
