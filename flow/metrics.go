package flow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for path replay.
//
// Metrics exposed (namespace "bbflow"):
//
//   - path_loads_total (counter): loads by source (own, original) and
//     result (found, not_found, error).
//   - path_saves_total (counter): saves by result (ok, invalid, error).
//   - path_steps (histogram): number of steps in loaded paths.
//   - path_load_seconds (histogram): store round trip of a load.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	loads       *prometheus.CounterVec
	saves       *prometheus.CounterVec
	steps       prometheus.Histogram
	loadLatency prometheus.Histogram
}

// NewMetrics registers the replay metrics with registry. A nil registry uses
// prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbflow",
			Name:      "path_loads_total",
			Help:      "Execution path loads by source and result",
		}, []string{"source", "result"}),
		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbflow",
			Name:      "path_saves_total",
			Help:      "Execution path saves by result",
		}, []string{"result"}),
		steps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bbflow",
			Name:      "path_steps",
			Help:      "Number of building blocks in loaded execution paths",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		loadLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bbflow",
			Name:      "path_load_seconds",
			Help:      "Duration of execution path loads",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) recordLoad(source, result string, steps int, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(source, result).Inc()
	m.loadLatency.Observe(d.Seconds())
	if result == "found" {
		m.steps.Observe(float64(steps))
	}
}

func (m *Metrics) recordSave(result string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result).Inc()
}
