// Package app wires the storage, API client and services shared by the
// yatter binaries.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Mr-Dark-debug/yatter/internal/api"
	"github.com/Mr-Dark-debug/yatter/internal/config"
	"github.com/Mr-Dark-debug/yatter/internal/content"
	"github.com/Mr-Dark-debug/yatter/internal/database"
	"github.com/Mr-Dark-debug/yatter/internal/imageloader"
	"github.com/Mr-Dark-debug/yatter/internal/login"
	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds the long-lived components of one process.
type App struct {
	Config   config.Config
	Store    *database.DBService
	API      *api.Client
	Statuses *repository.StatusRepositoryImpl

	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

// Open creates the data directory, opens the sealed store and builds
// the API client and repository for cfg.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	key, err := database.LoadOrCreateKey(cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	store, err := database.NewDBService(cfg.DBPath, key)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", cfg.DBPath, err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	client, err := api.NewClient(cfg.ServerURL, api.Options{
		HTTPClient:        &http.Client{Timeout: cfg.RequestTimeout},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Metrics:           collector,
		Logger:            logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	statuses := repository.NewStatusRepository(client, store, content.NewSanitizer(), cfg.TimelineLimit, logger)

	return &App{
		Config:   cfg,
		Store:    store,
		API:      client,
		Statuses: statuses,
		Registry: reg,
		Metrics:  collector,
		Logger:   logger,
	}, nil
}

// Images builds the image loader used by the TUI.
func (a *App) Images() *imageloader.HTTPLoader {
	return imageloader.NewHTTPLoader(imageloader.Options{
		Timeout:  a.Config.RequestTimeout,
		MaxBytes: a.Config.ImageMaxBytes,
		Strict:   a.Config.StrictImageHosts,
		Metrics:  a.Metrics,
		Logger:   a.Logger,
	})
}

// CheckLogin reports whether a token is stored.
func (a *App) CheckLogin() *login.CheckLoginService {
	return login.NewCheckLoginService(a.Store)
}

// Login signs in against the server and stores the token.
func (a *App) Login() *login.LoginService {
	return login.NewLoginService(a.API, a.Store, a.Metrics, a.Logger)
}

// Logout clears the stored token.
func (a *App) Logout() *login.LogoutService {
	return login.NewLogoutService(a.Store, a.Logger)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
