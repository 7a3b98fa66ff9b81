package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Mr-Dark-debug/yatter/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
)

type recordingScreen struct {
	ctx   context.Context
	name  string
	inits int
	sizes []tea.WindowSizeMsg
}

func (s *recordingScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *recordingScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		s.sizes = append(s.sizes, size)
	}
	return s, nil
}

func (s *recordingScreen) View() string { return "screen " + s.name }

// recordingRouter registers routes a and b and remembers the screens it
// built.
func recordingRouter() (*Router, map[string]*recordingScreen) {
	built := make(map[string]*recordingScreen)
	r := NewRouter()
	for _, name := range []string{"a", "b"} {
		name := name
		r.Composable(name, func(ctx context.Context) Screen {
			s := &recordingScreen{ctx: ctx, name: name}
			built[name] = s
			return s
		})
	}
	return r, built
}

func TestRouterUnknownRoute(t *testing.T) {
	r := NewRouter()
	if _, err := r.Screen(context.Background(), "nowhere"); err == nil {
		t.Error("expected error for unknown route")
	}
}

func TestRouterRoutes(t *testing.T) {
	r := NewRouter()
	SplashDestination{}.CreateNode(r)
	LoginDestination{}.CreateNode(r)
	PublicTimelineDestination{}.CreateNode(r)

	got := strings.Join(r.Routes(), ",")
	if got != "login,public_timeline,splash" {
		t.Errorf("routes = %s", got)
	}
}

func TestLoginDestinationBuildsLoginPage(t *testing.T) {
	r := NewRouter()
	LoginDestination{}.CreateNode(r)

	s, err := r.Screen(context.Background(), RouteLogin)
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	if _, ok := s.(*LoginPage); !ok {
		t.Errorf("screen = %T, want *LoginPage", s)
	}
}

func TestModelNavigationCancelsPreviousScreen(t *testing.T) {
	r, built := recordingRouter()
	m := NewModel(context.Background(), r, "a", logger.Discard())
	if m.Route() != "a" {
		t.Fatalf("route = %q", m.Route())
	}

	next, _ := m.Update(NavigateMsg{Route: "b"})
	m = next.(Model)

	if m.Route() != "b" {
		t.Fatalf("route = %q, want b", m.Route())
	}
	if built["a"].ctx.Err() == nil {
		t.Error("previous screen context not cancelled")
	}
	if built["b"].ctx.Err() != nil {
		t.Error("active screen context cancelled")
	}
	if built["b"].inits != 1 {
		t.Errorf("Init calls = %d, want 1", built["b"].inits)
	}
	if m.View() != "screen b" {
		t.Errorf("view = %q", m.View())
	}
}

func TestModelForwardsSizeToNewScreen(t *testing.T) {
	r, built := recordingRouter()
	m := NewModel(context.Background(), r, "a", logger.Discard())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	if len(built["a"].sizes) != 1 {
		t.Errorf("a sizes = %v", built["a"].sizes)
	}

	next, _ = m.Update(NavigateMsg{Route: "b"})
	m = next.(Model)
	sizes := built["b"].sizes
	if len(sizes) != 1 || sizes[0].Width != 80 || sizes[0].Height != 24 {
		t.Errorf("b sizes = %v", sizes)
	}
}

func TestModelUnknownRouteKeepsScreen(t *testing.T) {
	r, built := recordingRouter()
	m := NewModel(context.Background(), r, "a", logger.Discard())

	next, _ := m.Update(NavigateMsg{Route: "zzz"})
	m = next.(Model)

	if m.Route() != "a" {
		t.Errorf("route = %q, want a", m.Route())
	}
	if built["a"].ctx.Err() != nil {
		t.Error("screen cancelled by failed navigation")
	}
	if !strings.Contains(m.View(), "zzz") {
		t.Errorf("view = %q, want error", m.View())
	}
}

func TestModelQuitCancelsScreen(t *testing.T) {
	r, built := recordingRouter()
	m := NewModel(context.Background(), r, "a", logger.Discard())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
	if built["a"].ctx.Err() == nil {
		t.Error("screen context not cancelled on quit")
	}
}

type fakeChecker struct {
	loggedIn bool
	err      error
}

func (f fakeChecker) Execute(ctx context.Context) (bool, error) {
	return f.loggedIn, f.err
}

func TestSplashDestinations(t *testing.T) {
	tests := []struct {
		name  string
		check fakeChecker
		want  string
	}{
		{"logged in", fakeChecker{loggedIn: true}, RoutePublicTimeline},
		{"logged out", fakeChecker{}, RouteLogin},
		{"store error", fakeChecker{err: errors.New("locked")}, RouteLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSplashPage(context.Background(), tt.check, logger.Discard())
			_, msgs := pump(p, p.Init())
			if got := navigatedTo(msgs); got != tt.want {
				t.Errorf("navigated to %q, want %q", got, tt.want)
			}
		})
	}
}
