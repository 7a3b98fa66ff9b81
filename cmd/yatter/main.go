// Yatter TUI: browse the public timeline of a Yatter server.
//
// Usage:
//
//	yatter [flags]
//
// Flags:
//
//	--server   Yatter server URL (default: http://localhost:8080)
//	--db       Path to SQLite database file (default: ~/.yatter/yatter.db)
//	--log      Path to the log file (default: ~/.yatter/yatter.log)
//	--metrics  HTTP address for Prometheus metrics (default: disabled)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/Mr-Dark-debug/yatter/internal/app"
	"github.com/Mr-Dark-debug/yatter/internal/config"
	"github.com/Mr-Dark-debug/yatter/internal/logger"
	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/tui"
	"github.com/go-chi/chi/v5"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Yatter server URL")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database file")
	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Path to the log file")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics HTTP address")
	debug := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The terminal belongs to the renderer, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.LogPath)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	l := logger.SetupDefault(logFile, level)

	a, err := app.Open(cfg, l)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, a, l)
		defer srv.Close()
	}

	router := tui.NewRouter()
	for _, d := range []tui.Destination{
		tui.SplashDestination{Check: a.CheckLogin(), Logger: l},
		tui.LoginDestination{Login: a.Login(), Logger: l},
		tui.PublicTimelineDestination{
			Repo:   a.Statuses,
			Images: a.Images(),
			Logout: a.Logout(),
			Logger: l,
		},
	} {
		d.CreateNode(router)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Info("starting", slog.String("server", cfg.ServerURL), slog.String("db", cfg.DBPath))

	model := tui.NewModel(ctx, router, tui.RouteSplash, l)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func serveMetrics(addr string, a *app.App, l *slog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", metrics.Handler(a.Registry))

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	return srv
}
