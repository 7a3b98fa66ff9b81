package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	tea "github.com/charmbracelet/bubbletea"
)

// Route names.
const (
	RouteSplash         = "splash"
	RouteLogin          = "login"
	RoutePublicTimeline = "public_timeline"
)

// Screen is one destination of the app. It follows BubbleTea's
// Init/Update/View but returns itself as a Screen from Update.
type Screen interface {
	Init() tea.Cmd
	Update(tea.Msg) (Screen, tea.Cmd)
	View() string
}

// ScreenFactory builds a screen. ctx is cancelled when the user
// navigates away from it.
type ScreenFactory func(ctx context.Context) Screen

// Router maps route names to screen factories.
type Router struct {
	routes map[string]ScreenFactory
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]ScreenFactory)}
}

// Composable registers factory under route, replacing any previous one.
func (r *Router) Composable(route string, factory ScreenFactory) {
	r.routes[route] = factory
}

// Screen builds the screen registered for route.
func (r *Router) Screen(ctx context.Context, route string) (Screen, error) {
	factory, ok := r.routes[route]
	if !ok {
		return nil, fmt.Errorf("no screen registered for route %q", route)
	}
	return factory(ctx), nil
}

// Routes lists registered routes in name order.
func (r *Router) Routes() []string {
	routes := make([]string, 0, len(r.routes))
	for route := range r.routes {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// NavigateMsg asks the root model to show Route.
type NavigateMsg struct {
	Route string
}

// Navigate returns a command that switches to route.
func Navigate(route string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route}
	}
}

// Destination registers one or more routes on a router.
type Destination interface {
	CreateNode(r *Router)
}

// ────────────────────────────────────────────────────────────
// Destinations
// ────────────────────────────────────────────────────────────

// SplashDestination registers the start screen.
type SplashDestination struct {
	Check  LoginChecker
	Logger *slog.Logger
}

// CreateNode registers RouteSplash.
func (d SplashDestination) CreateNode(r *Router) {
	r.Composable(RouteSplash, func(ctx context.Context) Screen {
		return NewSplashPage(ctx, d.Check, d.Logger)
	})
}

// LoginDestination registers the login screen. It takes no parameters
// and has no guards.
type LoginDestination struct {
	Login  LoginExecutor
	Logger *slog.Logger
}

// CreateNode registers RouteLogin.
func (d LoginDestination) CreateNode(r *Router) {
	r.Composable(RouteLogin, func(ctx context.Context) Screen {
		return NewLoginPage(ctx, d.Login, d.Logger)
	})
}

// PublicTimelineDestination registers the public timeline screen. Each
// visit gets a fresh view-model.
type PublicTimelineDestination struct {
	Repo   TimelineRepository
	Images imageloader.Loader
	Logout LogoutExecutor
	Logger *slog.Logger
}

// CreateNode registers RoutePublicTimeline.
func (d PublicTimelineDestination) CreateNode(r *Router) {
	r.Composable(RoutePublicTimeline, func(ctx context.Context) Screen {
		vm := NewPublicTimelineViewModel(d.Repo, d.Logger)
		return NewPublicTimelinePage(ctx, vm, d.Images, d.Logout, d.Logger)
	})
}
