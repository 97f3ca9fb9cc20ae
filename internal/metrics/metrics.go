// Package metrics records per-run optimizer counters in a Prometheus
// registry and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sb3slim"

// Asset outcomes.
const (
	OutcomeOptimized   = "optimized"
	OutcomeCached      = "cached"
	OutcomeFallback    = "fallback"
	OutcomePassthrough = "passthrough"
)

// Recorder holds the run metrics. A nil *Recorder discards observations.
type Recorder struct {
	registry      *prometheus.Registry
	assets        *prometheus.CounterVec
	assetBytes    *prometheus.CounterVec
	assetDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// New registers the optimizer metrics on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		assets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assets",
				Name:      "processed_total",
				Help:      "Assets processed, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		assetBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assets",
				Name:      "bytes_total",
				Help:      "Asset bytes read and written, by direction.",
			},
			[]string{"direction"},
		),
		assetDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "assets",
				Name:      "transcode_seconds",
				Help:      "Time spent transcoding one asset.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"kind"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "runs",
				Name:      "total",
				Help:      "Pipeline runs, by final outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "runs",
				Name:      "duration_seconds",
				Help:      "Wall time of a pipeline run.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"outcome"},
		),
	}
	r.registry.MustRegister(r.assets, r.assetBytes, r.assetDuration, r.runs, r.runDuration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveAsset records one processed asset.
func (r *Recorder) ObserveAsset(kind, outcome string, bytesIn, bytesOut int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.assets.WithLabelValues(kind, outcome).Inc()
	r.assetBytes.WithLabelValues("in").Add(float64(bytesIn))
	r.assetBytes.WithLabelValues("out").Add(float64(bytesOut))
	if outcome == OutcomeOptimized {
		r.assetDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	}
}

// ObserveRun records the end of a pipeline run.
func (r *Recorder) ObserveRun(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
