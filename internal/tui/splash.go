package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoginChecker reports whether a session exists.
type LoginChecker interface {
	Execute(ctx context.Context) (bool, error)
}

type loginCheckedMsg struct {
	loggedIn bool
	err      error
}

// SplashPage checks the stored session and moves on to the timeline or
// the login screen.
type SplashPage struct {
	ctx    context.Context
	check  LoginChecker
	logger *slog.Logger

	width  int
	height int
}

// NewSplashPage creates the splash screen.
func NewSplashPage(ctx context.Context, check LoginChecker, logger *slog.Logger) *SplashPage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SplashPage{ctx: ctx, check: check, logger: logger}
}

func (p *SplashPage) Init() tea.Cmd {
	ctx, check := p.ctx, p.check
	return func() tea.Msg {
		loggedIn, err := check.Execute(ctx)
		return loginCheckedMsg{loggedIn: loggedIn, err: err}
	}
}

func (p *SplashPage) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "q" {
			return p, tea.Quit
		}

	case loginCheckedMsg:
		return p, Navigate(p.destination(msg))
	}
	return p, nil
}

// destination degrades to the login screen when the session can't be read.
func (p *SplashPage) destination(msg loginCheckedMsg) string {
	if msg.err != nil {
		p.logger.Warn("reading stored session failed", slog.String("error", msg.err.Error()))
		return RouteLogin
	}
	if msg.loggedIn {
		return RoutePublicTimeline
	}
	return RouteLogin
}

func (p *SplashPage) View() string {
	content := headerBrandStyle.Render("YATTER") + "\n\n" + hintDescStyle.Render("Loading…")
	if p.width == 0 {
		return content
	}
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, content)
}
