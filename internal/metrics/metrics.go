// Package metrics exposes Prometheus counters for the provider config workflow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Recorder records workflow metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	applied     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
}

// NewRecorder creates a recorder on its own registry, including Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "auth_config",
			Name:      "submissions_total",
			Help:      "Provider config form submissions by outcome.",
		}, []string{"outcome"}),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "auth_config",
			Name:      "transactions_applied_total",
			Help:      "Provider config transactions written, by kind.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Subsystem: "auth_config",
			Name:      "transactions_skipped_total",
			Help:      "Provider config transactions skipped as no-ops, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		r.submissions,
		r.applied,
		r.skipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Submission counts one form submission.
func (r *Recorder) Submission(outcome string) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(outcome).Inc()
}

// Applied counts one written transaction.
func (r *Recorder) Applied(kind string) {
	if r == nil {
		return
	}
	r.applied.WithLabelValues(kind).Inc()
}

// Skipped counts one skipped no-op transaction.
func (r *Recorder) Skipped(kind string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(kind).Inc()
}

// PoolStats reports the occupancy of a named worker pool.
type PoolStats interface {
	Name() string
	Running() int
	Free() int
	Cap() int
}

// ObservePool exports running, free and capacity gauges for pool.
func (r *Recorder) ObservePool(pool PoolStats) {
	if r == nil || pool == nil {
		return
	}
	gauge := func(name, help string, value func() int) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   "warden",
			Subsystem:   "worker_pool",
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"pool": pool.Name()},
		}, func() float64 { return float64(value()) })
	}
	r.registry.MustRegister(
		gauge("running", "Busy workers.", pool.Running),
		gauge("free", "Idle worker slots.", pool.Free),
		gauge("capacity", "Pool capacity.", pool.Cap),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
