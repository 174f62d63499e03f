package rest

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records outbound REST calls. One Metrics value is shared by all
// clients of a process; the client label tells them apart.
//
//   - bbflow_rest_requests_total{client,method,code}
//   - bbflow_rest_request_duration_seconds{client,method}
//   - bbflow_rest_retries_total{client}
//   - bbflow_rest_breaker_state{client} (0 closed, 1 half-open, 2 open)
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	breaker  *prometheus.GaugeVec
}

// NewMetrics registers the REST metrics with registry. A nil registry uses
// prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbflow",
			Subsystem: "rest",
			Name:      "requests_total",
			Help:      "Outbound REST requests by client, method and status code",
		}, []string{"client", "method", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bbflow",
			Subsystem: "rest",
			Name:      "request_duration_seconds",
			Help:      "Outbound REST request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "method"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbflow",
			Subsystem: "rest",
			Name:      "retries_total",
			Help:      "Retried outbound REST requests",
		}, []string{"client"}),
		breaker: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bbflow",
			Subsystem: "rest",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"client"}),
	}
}

func (m *Metrics) observe(client, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(client, method, label).Inc()
	m.duration.WithLabelValues(client, method).Observe(d.Seconds())
}

func (m *Metrics) retry(client string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(client).Inc()
}

func (m *Metrics) breakerState(client string, state float64) {
	if m == nil {
		return
	}
	m.breaker.WithLabelValues(client).Set(state)
}
