// Package metrics exposes Prometheus collectors for best-path recomputation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtlprog/bestpath/internal/domain"
)

// Cycle outcomes.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Recorder owns a private registry with the recomputation collectors.
type Recorder struct {
	registry       *prometheus.Registry
	recomputations *prometheus.CounterVec
	duration       prometheus.Histogram
	paths          prometheus.Gauge
	changes        prometheus.Counter
	fetchErrors    *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors along with the Go and process
// collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		recomputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bestpath_recomputations_total",
			Help: "Recomputation cycles by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bestpath_recomputation_duration_seconds",
			Help:    "Duration of recomputation cycles",
			Buckets: prometheus.DefBuckets,
		}),
		paths: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bestpath_paths",
			Help: "Number of pairs in the last computed best-path table",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bestpath_path_changes_total",
			Help: "Best paths written because they breached the price change tolerance",
		}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bestpath_price_fetch_errors_total",
			Help: "Failed price fetches by provider",
		}, []string{"provider"}),
	}
	r.registry.MustRegister(
		r.recomputations, r.duration, r.paths, r.changes, r.fetchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveCycle records one recomputation cycle. Skipped cycles never ran and have no duration.
func (r *Recorder) ObserveCycle(outcome string, elapsed time.Duration) {
	r.recomputations.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		r.duration.Observe(elapsed.Seconds())
	}
}

// SetPaths records the size of the last computed table.
func (r *Recorder) SetPaths(n int) {
	r.paths.Set(float64(n))
}

// AddChanges counts written best paths.
func (r *Recorder) AddChanges(n int) {
	r.changes.Add(float64(n))
}

// FetchFailed counts a failed price fetch.
func (r *Recorder) FetchFailed(p domain.Provider) {
	r.fetchErrors.WithLabelValues(string(p)).Inc()
}
