package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Mr-Dark-debug/yatter/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoginExecutor signs in and stores the session.
type LoginExecutor interface {
	Execute(ctx context.Context, username, password string) error
}

type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
	fieldSubmit
	fieldCount
)

type loginDoneMsg struct{ err error }

// LoginPage is the username/password form.
type LoginPage struct {
	ctx    context.Context
	login  LoginExecutor
	logger *slog.Logger

	username   string
	password   string
	focus      loginField
	submitting bool
	err        error

	width  int
	height int
}

// NewLoginPage creates the login screen.
func NewLoginPage(ctx context.Context, login LoginExecutor, logger *slog.Logger) *LoginPage {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginPage{ctx: ctx, login: login, logger: logger}
}

func (p *LoginPage) Init() tea.Cmd {
	return nil
}

// canLogin gates the submit action.
func (p *LoginPage) canLogin() bool {
	return strings.TrimSpace(p.username) != "" && p.password != "" && !p.submitting
}

func (p *LoginPage) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case loginDoneMsg:
		p.submitting = false
		if msg.err != nil {
			p.err = msg.err
			p.password = ""
			p.focus = fieldPassword
			return p, nil
		}
		return p, Navigate(RoutePublicTimeline)

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *LoginPage) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		p.focus = (p.focus + 1) % fieldCount
		return p, nil

	case tea.KeyShiftTab, tea.KeyUp:
		p.focus = (p.focus + fieldCount - 1) % fieldCount
		return p, nil

	case tea.KeyEnter:
		if p.focus == fieldUsername {
			p.focus = fieldPassword
			return p, nil
		}
		return p, p.submit()

	case tea.KeyEsc:
		return p, tea.Quit

	case tea.KeyBackspace:
		p.editFocused(func(s string) string {
			if s == "" {
				return s
			}
			_, size := utf8.DecodeLastRuneInString(s)
			return s[:len(s)-size]
		})
		return p, nil

	case tea.KeyRunes, tea.KeySpace:
		text := string(msg.Runes)
		if msg.Type == tea.KeySpace {
			text = " "
		}
		p.editFocused(func(s string) string { return s + text })
		return p, nil
	}
	return p, nil
}

func (p *LoginPage) editFocused(edit func(string) string) {
	if p.submitting {
		return
	}
	switch p.focus {
	case fieldUsername:
		p.username = edit(p.username)
	case fieldPassword:
		p.password = edit(p.password)
	default:
		return
	}
	p.err = nil
}

func (p *LoginPage) submit() tea.Cmd {
	if !p.canLogin() {
		return nil
	}
	p.submitting = true
	p.err = nil

	ctx, login := p.ctx, p.login
	username, password := p.username, p.password
	return func() tea.Msg {
		return loginDoneMsg{err: login.Execute(ctx, username, password)}
	}
}

func (p *LoginPage) View() string {
	var lines []string
	lines = append(lines, formTitleStyle.Render("Sign in to Yatter"))
	lines = append(lines, p.renderField("Username", p.username, fieldUsername))
	lines = append(lines, p.renderField("Password", strings.Repeat("•", utf8.RuneCountInString(p.password)), fieldPassword))

	label := "Login"
	if p.submitting {
		label = "Signing in…"
	}
	if p.canLogin() || p.submitting {
		button := buttonStyle
		if p.focus == fieldSubmit {
			button = button.Underline(true)
		}
		lines = append(lines, button.Render(label))
	} else {
		lines = append(lines, buttonDisabledStyle.Render(label))
	}

	if p.err != nil {
		lines = append(lines, "", errorStyle.Render(loginErrorText(p.err)))
	}

	form := lipgloss.JoinVertical(lipgloss.Left, lines...)
	footer := renderFooter(p.width, "", []hint{
		{"tab", "next"},
		{"enter", "login"},
		{"esc", "quit"},
	})

	if p.width == 0 {
		return form
	}
	body := lipgloss.Place(p.width, maxInt(p.height-2, lipgloss.Height(form)), lipgloss.Center, lipgloss.Center, form)
	return lipgloss.JoinVertical(lipgloss.Left, renderHeader(p.width, "Login"), body, footer)
}

func (p *LoginPage) renderField(label, value string, field loginField) string {
	style := formFieldStyle
	if p.focus == field {
		style = formFieldFocusedStyle
		value += cursorStyle.Render(" ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, formLabelStyle.Render(label), style.Render(value))
}

func loginErrorText(err error) string {
	if errors.Is(err, model.ErrUnauthorized) {
		return "Login failed: wrong username or password."
	}
	return "Login failed: " + err.Error()
}
