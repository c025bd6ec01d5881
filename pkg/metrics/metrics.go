package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboard "github.com/melodix/go-dashboard/components/dashboard"
)

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "melodix_dashboard_events_total", Help: "Dashboard events by name"},
		[]string{"event"},
	)
	reloadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "melodix_dashboard_reload_failures_total", Help: "Range reloads that failed and kept stale widgets"},
	)
	staleReloads = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "melodix_dashboard_stale_reloads_total", Help: "Reload results discarded by the sequence guard"},
	)
	loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "melodix_dashboard_load_duration_seconds",
			Help:    "Snapshot and reload fetch time",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"event"},
	)
)

// Register installs the dashboard collectors on the registerer, defaulting
// to the global prometheus registry.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(eventsTotal, reloadFailures, staleReloads, loadDuration)
}

// Handler exposes the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Recorder implements the dashboard Telemetry interface on top of the
// prometheus collectors.
type Recorder struct{}

var _ dashboard.Telemetry = Recorder{}

// Record counts the event and feeds the specialized collectors for reload
// outcomes and fetch durations.
func (Recorder) Record(_ context.Context, event string, payload map[string]any) {
	eventsTotal.WithLabelValues(event).Inc()
	switch event {
	case "dashboard.reload.failed":
		reloadFailures.Inc()
	case "dashboard.reload.stale":
		staleReloads.Inc()
	}
	if payload == nil {
		return
	}
	if seconds, ok := floatValue(payload["duration_seconds"]); ok {
		loadDuration.WithLabelValues(event).Observe(seconds)
	}
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
