// Package metrics collects Prometheus metrics for the Yatter client and
// the sync daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics interface used by the API client, the image
// loader and the sync poller.
type Recorder interface {
	RecordTimelineFetch(duration time.Duration, err error)
	RecordImageLoad(result string)
	RecordLogin(success bool)
	RecordSyncRun(statusCount int, err error)
}

// Image load results.
const (
	ImageLoaded   = "loaded"
	ImageFailed   = "failed"
	ImageFallback = "fallback"
)

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	fetchSuccess   prometheus.Counter
	fetchFail      prometheus.Counter
	fetchLatency   prometheus.Histogram
	imageLoads     *prometheus.CounterVec
	logins         *prometheus.CounterVec
	syncRuns       *prometheus.CounterVec
	syncedStatuses prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatter_timeline_fetch_success_total",
			Help: "Successful public timeline fetches.",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yatter_timeline_fetch_fail_total",
			Help: "Failed public timeline fetches.",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yatter_timeline_fetch_latency_seconds",
			Help:    "Public timeline fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
		imageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatter_image_loads_total",
			Help: "Avatar and media loads by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatter_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yatter_sync_runs_total",
			Help: "Background sync runs by outcome.",
		}, []string{"outcome"}),
		syncedStatuses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yatter_synced_statuses",
			Help: "Statuses stored by the last successful sync run.",
		}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.imageLoads,
		c.logins,
		c.syncRuns,
		c.syncedStatuses,
	)

	return c
}

// RecordTimelineFetch records a timeline fetch and its latency.
func (c *Collector) RecordTimelineFetch(duration time.Duration, err error) {
	c.fetchLatency.Observe(duration.Seconds())
	if err != nil {
		c.fetchFail.Inc()
		return
	}
	c.fetchSuccess.Inc()
}

// RecordImageLoad records an image load by result.
func (c *Collector) RecordImageLoad(result string) {
	c.imageLoads.WithLabelValues(result).Inc()
}

// RecordLogin records a login attempt.
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(outcome(success)).Inc()
}

// RecordSyncRun records a sync run.
func (c *Collector) RecordSyncRun(statusCount int, err error) {
	c.syncRuns.WithLabelValues(outcome(err == nil)).Inc()
	if err == nil {
		c.syncedStatuses.Set(float64(statusCount))
	}
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Handler returns an HTTP handler exposing the metrics in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTimelineFetch(time.Duration, error) {}
func (Nop) RecordImageLoad(string)                   {}
func (Nop) RecordLogin(bool)                         {}
func (Nop) RecordSyncRun(int, error)                 {}
