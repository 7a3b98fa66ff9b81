// Package sync implements the background timeline poller behind
// yatter-sync. It fetches the public timeline on a fixed interval through
// the status repository, which refreshes the local cache, and records
// every run in the sync log.
//
// Architecture:
//
//	ticker → Poller.RunOnce → StatusRepository → Yatter API
//	                        ↘ SyncLog (sync_runs)
//
// A small chi router exposes /healthz, /metrics and /api/status.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/database"
	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/Mr-Dark-debug/yatter/internal/repository"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Poller is the background sync service.
type Poller interface {
	// Start runs one sync immediately and then one per interval.
	Start(ctx context.Context) error
	// Stop cancels the loop and waits for the in-flight run to finish.
	Stop() error
	// Stats returns the current counters.
	Stats() Stats
}

// Stats tracks poller activity.
type Stats struct {
	Runs        int64  `json:"runs"`
	Failures    int64  `json:"failures"`
	LastCount   int64  `json:"last_status_count"`
	LastRunID   string `json:"last_run_id,omitempty"`
	UptimeSecs  int64  `json:"uptime_seconds"`
	IntervalStr string `json:"interval"`
}

// Config holds configuration for the poller.
type Config struct {
	// Interval between runs.
	Interval time.Duration

	// MetricsAddr is the HTTP address for /healthz, /metrics and
	// /api/status. Empty disables the server.
	MetricsAddr string
}

// TimelinePoller is the production Poller.
type TimelinePoller struct {
	config   Config
	repo     repository.StatusRepository
	runs     database.SyncLog
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	runCount  atomic.Int64
	failCount atomic.Int64
	lastCount atomic.Int64
	lastRunID atomic.Value

	started time.Time
	wg      stdsync.WaitGroup
	cancel  context.CancelFunc
	server  *http.Server
}

// NewTimelinePoller creates a poller. gatherer may be nil, in which case
// /metrics serves the default registry.
func NewTimelinePoller(config Config, repo repository.StatusRepository, runs database.SyncLog, rec metrics.Recorder, gatherer prometheus.Gatherer, logger *slog.Logger) *TimelinePoller {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TimelinePoller{
		config:   config,
		repo:     repo,
		runs:     runs,
		metrics:  rec,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Start begins polling and, if configured, serving HTTP.
func (p *TimelinePoller) Start(ctx context.Context) error {
	p.started = time.Now()
	ctx, p.cancel = context.WithCancel(ctx)

	if p.config.MetricsAddr != "" {
		p.server = &http.Server{
			Addr:              p.config.MetricsAddr,
			Handler:           p.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		p.wg.Add(1)
		go p.serve()
	}

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("yatter sync started",
		slog.Duration("interval", p.config.Interval),
		slog.String("metrics_addr", p.config.MetricsAddr),
	)
	return nil
}

// Stop shuts the poller down.
func (p *TimelinePoller) Stop() error {
	if p.cancel != nil {
		p.cancel()
	}

	var err error
	if p.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = p.server.Shutdown(shutdownCtx)
	}

	p.wg.Wait()
	p.logger.Info("yatter sync stopped")
	return err
}

// Stats returns a snapshot of the counters.
func (p *TimelinePoller) Stats() Stats {
	s := Stats{
		Runs:        p.runCount.Load(),
		Failures:    p.failCount.Load(),
		LastCount:   p.lastCount.Load(),
		IntervalStr: p.config.Interval.String(),
	}
	if id, ok := p.lastRunID.Load().(string); ok {
		s.LastRunID = id
	}
	if !p.started.IsZero() {
		s.UptimeSecs = int64(time.Since(p.started).Seconds())
	}
	return s
}

func (p *TimelinePoller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sync and records it. The returned error is
// the fetch error, if any; failing to record the run is only logged.
func (p *TimelinePoller) RunOnce(ctx context.Context) (model.SyncRun, error) {
	run := model.SyncRun{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UnixMilli(),
	}

	statuses, err := p.repo.FetchPublicTimeline(ctx)
	run.FinishedAt = time.Now().UnixMilli()
	run.StatusCount = len(statuses)
	if err != nil {
		run.Error = err.Error()
	}

	p.runCount.Add(1)
	p.lastRunID.Store(run.RunID)
	p.metrics.RecordSyncRun(run.StatusCount, err)

	if err != nil {
		p.failCount.Add(1)
		p.logger.Error("sync run failed",
			slog.String("run_id", run.RunID),
			slog.String("error", err.Error()),
		)
	} else {
		p.lastCount.Store(int64(run.StatusCount))
		p.logger.Info("sync run finished",
			slog.String("run_id", run.RunID),
			slog.Int("statuses", run.StatusCount),
			slog.Int64("duration_ms", run.FinishedAt-run.StartedAt),
		)
	}

	// Record even when ctx was cancelled mid-run.
	if recErr := p.runs.RecordSyncRun(context.WithoutCancel(ctx), run); recErr != nil {
		p.logger.Warn("failed to record sync run",
			slog.String("run_id", run.RunID),
			slog.String("error", recErr.Error()),
		)
	}

	if err != nil {
		return run, fmt.Errorf("sync run %s: %w", run.RunID, err)
	}
	return run, nil
}

func (p *TimelinePoller) serve() {
	defer p.wg.Done()

	p.logger.Info("sync HTTP server listening", slog.String("addr", p.config.MetricsAddr))
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.logger.Error("sync HTTP server failed", slog.String("error", err.Error()))
	}
}
