package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/database"
	"github.com/Mr-Dark-debug/yatter/internal/logger"
	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeRepo struct {
	mu       stdsync.Mutex
	calls    int
	statuses []model.Status
	err      error
}

func (r *fakeRepo) FetchPublicTimeline(context.Context) ([]model.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.statuses, nil
}

func (r *fakeRepo) CachedPublicTimeline(context.Context) ([]model.Status, error) {
	return nil, nil
}

func (r *fakeRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newSyncLog(t *testing.T) *database.DBService {
	t.Helper()
	svc, err := database.NewDBService(":memory:", bytes.Repeat([]byte{9}, database.KeySize))
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestRunOnceRecordsSuccess(t *testing.T) {
	repo := &fakeRepo{statuses: []model.Status{{ID: "1"}, {ID: "2"}}}
	runs := newSyncLog(t)
	reg := prometheus.NewRegistry()
	p := NewTimelinePoller(Config{Interval: time.Hour}, repo, runs, metrics.NewCollector(reg), reg, logger.Discard())

	run, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if _, err := uuid.Parse(run.RunID); err != nil {
		t.Errorf("expected UUID run id, got %q", run.RunID)
	}
	if run.StatusCount != 2 || run.Error != "" {
		t.Errorf("unexpected run %+v", run)
	}
	if run.FinishedAt < run.StartedAt {
		t.Errorf("finished before started: %+v", run)
	}

	stored, err := runs.LatestSyncRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].RunID != run.RunID {
		t.Errorf("expected run to be stored, got %+v", stored)
	}

	stats := p.Stats()
	if stats.Runs != 1 || stats.Failures != 0 || stats.LastCount != 2 || stats.LastRunID != run.RunID {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRunOnceRecordsFailure(t *testing.T) {
	repo := &fakeRepo{err: model.ErrUnauthorized}
	runs := newSyncLog(t)
	p := NewTimelinePoller(Config{}, repo, runs, nil, nil, logger.Discard())

	run, err := p.RunOnce(context.Background())
	if !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if run.Error == "" {
		t.Error("expected error text on the run")
	}

	stored, _ := runs.LatestSyncRuns(context.Background(), 5)
	if len(stored) != 1 || stored[0].Error == "" {
		t.Errorf("expected failed run to be stored, got %+v", stored)
	}
	if p.Stats().Failures != 1 {
		t.Errorf("expected one failure, got %+v", p.Stats())
	}
}

func TestStartStop(t *testing.T) {
	repo := &fakeRepo{}
	p := NewTimelinePoller(Config{Interval: 10 * time.Millisecond}, repo, newSyncLog(t), nil, nil, logger.Discard())

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for repo.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if repo.callCount() < 2 {
		t.Fatalf("expected at least 2 runs, got %d", repo.callCount())
	}

	after := repo.callCount()
	time.Sleep(30 * time.Millisecond)
	if repo.callCount() != after {
		t.Error("expected no runs after Stop")
	}
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	repo := &fakeRepo{statuses: []model.Status{{ID: "1"}}}
	p := NewTimelinePoller(Config{Interval: time.Minute}, repo, newSyncLog(t), rec, reg, logger.Discard())
	p.RunOnce(context.Background())

	srv := httptest.NewServer(p.Router())
	defer srv.Close()

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		if !strings.Contains(buf.String(), "yatter_sync_runs_total") {
			t.Errorf("expected sync metrics in output, got:\n%s", buf.String())
		}
	})

	t.Run("status", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/status")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var body statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decoding status: %v", err)
		}
		if body.Stats.Runs != 1 || len(body.RecentRuns) != 1 {
			t.Errorf("unexpected status %+v", body)
		}
		if body.Stats.IntervalStr != "1m0s" {
			t.Errorf("unexpected interval %q", body.Stats.IntervalStr)
		}
	})
}
