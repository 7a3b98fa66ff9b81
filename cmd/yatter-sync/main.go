// Yatter Sync: keeps the local timeline cache fresh in the background.
//
// Usage:
//
//	yatter-sync [flags]
//
// Flags:
//
//	--server    Yatter server URL (default: http://localhost:8080)
//	--db        Path to SQLite database file (default: ~/.yatter/yatter.db)
//	--metrics   HTTP address for /healthz, /metrics and /api/status (default: 127.0.0.1:9877)
//	--interval  Poll interval (default: 1m)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mr-Dark-debug/yatter/internal/app"
	"github.com/Mr-Dark-debug/yatter/internal/config"
	"github.com/Mr-Dark-debug/yatter/internal/logger"
	ysync "github.com/Mr-Dark-debug/yatter/internal/sync"
)

const defaultMetricsAddr = "127.0.0.1:9877"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Yatter server URL")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database file")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP address for health, metrics and status")
	flag.DurationVar(&cfg.SyncInterval, "interval", cfg.SyncInterval, "Poll interval")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	l := logger.SetupDefault(os.Stderr, slog.LevelInfo)

	a, err := app.Open(cfg, l)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	poller := ysync.NewTimelinePoller(ysync.Config{
		Interval:    cfg.SyncInterval,
		MetricsAddr: cfg.MetricsAddr,
	}, a.Statuses, a.Store, a.Metrics, a.Registry, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := poller.Start(ctx); err != nil {
		log.Fatalf("Failed to start poller: %v", err)
	}

	// Print startup banner
	fmt.Println()
	fmt.Println("  YATTER SYNC")
	fmt.Println()
	fmt.Printf("  Server:   %s\n", cfg.ServerURL)
	fmt.Printf("  DB:       %s\n", cfg.DBPath)
	fmt.Printf("  Interval: %s\n", cfg.SyncInterval)
	fmt.Printf("  Status:   http://%s/api/status\n", cfg.MetricsAddr)
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n  Shutting down gracefully...")
	cancel()
	if err := poller.Stop(); err != nil {
		l.Error("shutdown failed", slog.String("error", err.Error()))
	}

	fmt.Println("  Done.")
}
