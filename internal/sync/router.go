package sync

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// recentRuns is how many runs /api/status reports.
const recentRuns = 10

type statusResponse struct {
	Stats      Stats           `json:"stats"`
	RecentRuns []model.SyncRun `json:"recent_runs"`
}

// Router returns the poller's HTTP surface.
func (p *TimelinePoller) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(p.gatherer))

	r.Get("/api/status", p.handleStatus)

	return r
}

func (p *TimelinePoller) handleStatus(w http.ResponseWriter, r *http.Request) {
	runs, err := p.runs.LatestSyncRuns(r.Context(), recentRuns)
	if err != nil {
		p.logger.Error("listing sync runs", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing sync runs failed"})
		return
	}
	if runs == nil {
		runs = []model.SyncRun{}
	}
	writeJSON(w, http.StatusOK, statusResponse{Stats: p.Stats(), RecentRuns: runs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
