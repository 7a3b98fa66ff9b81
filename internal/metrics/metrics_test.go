package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorTimelineFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTimelineFetch(120*time.Millisecond, nil)
	c.RecordTimelineFetch(80*time.Millisecond, nil)
	c.RecordTimelineFetch(time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(c.fetchSuccess); got != 2 {
		t.Errorf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(c.fetchFail); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
}

func TestCollectorImageLoads(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordImageLoad(ImageLoaded)
	c.RecordImageLoad(ImageFailed)
	c.RecordImageLoad(ImageFailed)

	if got := testutil.ToFloat64(c.imageLoads.WithLabelValues(ImageFailed)); got != 2 {
		t.Errorf("expected 2 failed loads, got %v", got)
	}
}

func TestCollectorSyncRunSetsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSyncRun(17, nil)
	c.RecordSyncRun(0, errors.New("offline"))

	if got := testutil.ToFloat64(c.syncedStatuses); got != 17 {
		t.Errorf("expected gauge to keep last successful count 17, got %v", got)
	}
	if got := testutil.ToFloat64(c.syncRuns.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(true)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `yatter_login_attempts_total{outcome="success"} 1`) {
		t.Errorf("expected login counter in output, got:\n%s", body)
	}
}
