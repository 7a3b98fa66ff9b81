package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model. It owns navigation: one screen is
// active at a time, and each screen runs under its own context that is
// cancelled when the screen is left.
type Model struct {
	ctx    context.Context
	router *Router
	logger *slog.Logger

	route  string
	screen Screen
	cancel context.CancelFunc

	width  int
	height int
	err    error
}

// NewModel creates the root model and builds the screen for start.
func NewModel(ctx context.Context, router *Router, start string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := Model{ctx: ctx, router: router, logger: logger}
	m, _ = m.navigate(start)
	return m
}

// Route returns the active route.
func (m Model) Route() string {
	return m.route
}

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	if m.screen == nil {
		return nil
	}
	return m.screen.Init()
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.leave()
			return m, tea.Quit
		}

	case NavigateMsg:
		var cmd tea.Cmd
		m, cmd = m.navigate(msg.Route)
		return m, cmd
	}

	if m.screen == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

// navigate swaps the active screen for route and cancels the previous
// screen's context so its in-flight work stops. An unknown route leaves
// the current screen in place.
func (m Model) navigate(route string) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	screen, err := m.router.Screen(ctx, route)
	if err != nil {
		cancel()
		m.logger.Error("navigation failed", slog.String("route", route), slog.String("error", err.Error()))
		m.err = err
		return m, nil
	}

	m.leave()
	m.logger.Debug("navigated", slog.String("from", m.route), slog.String("to", route))
	m.route = route
	m.screen = screen
	m.cancel = cancel
	m.err = nil

	cmds := []tea.Cmd{screen.Init()}
	if m.width > 0 {
		var sizeCmd tea.Cmd
		m.screen, sizeCmd = m.screen.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		cmds = append(cmds, sizeCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) leave() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.screen == nil {
		return "Initializing..."
	}
	return m.screen.View()
}
