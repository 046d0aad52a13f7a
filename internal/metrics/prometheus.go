// Package metrics exposes Prometheus collectors for the runtime: invocation
// counts and latency, executor lifecycle events, and trigger fan-out.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

type collectors struct {
	registry *prometheus.Registry

	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	executorsStarted   prometheus.Counter
	executorsStopped   prometheus.Counter
	activeExecutors    prometheus.Gauge
	scheduleFiresTotal *prometheus.CounterVec
}

var m *collectors

// Init creates the Prometheus registry and registers every collector.
// Safe to call once at startup; a nil *m guards every recording function
// so metrics calls are harmless no-ops before Init runs (e.g. in tests).
func Init(namespace string, buckets []float64) {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	c := &collectors{
		registry: registry,
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of function invocations",
		}, []string{"function", "language", "status"}),
		invocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_ms",
			Help:      "Function invocation duration in milliseconds",
			Buckets:   buckets,
		}, []string{"function", "language"}),
		executorsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executors_started_total",
			Help:      "Total number of executors started (includes replacements)",
		}),
		executorsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executors_stopped_total",
			Help:      "Total number of executors stopped",
		}),
		activeExecutors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_executors",
			Help:      "Number of executors currently registered",
		}),
		scheduleFiresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_fires_total",
			Help:      "Total number of cron schedule fires dispatched",
		}, []string{"function", "status"}),
	}

	registry.MustRegister(
		c.invocationsTotal,
		c.invocationDuration,
		c.executorsStarted,
		c.executorsStopped,
		c.activeExecutors,
		c.scheduleFiresTotal,
	)

	m = c
}

func RecordInvocation(function, language string, durationMs int64, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.invocationsTotal.WithLabelValues(function, language, status).Inc()
	m.invocationDuration.WithLabelValues(function, language).Observe(float64(durationMs))
}

func RecordExecutorStarted() {
	if m == nil {
		return
	}
	m.executorsStarted.Inc()
}

func RecordExecutorStopped() {
	if m == nil {
		return
	}
	m.executorsStopped.Inc()
}

func SetActiveExecutors(count int) {
	if m == nil {
		return
	}
	m.activeExecutors.Set(float64(count))
}

func RecordScheduleFire(function string, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.scheduleFiresTotal.WithLabelValues(function, status).Inc()
}

// Handler serves the registered collectors in the Prometheus exposition
// format. Returns a handler that responds 503 if Init hasn't run yet.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			http.Error(w, "metrics not initialized", http.StatusServiceUnavailable)
			return
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
