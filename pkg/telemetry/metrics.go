// Package telemetry exposes Prometheus metrics and OpenTelemetry spans for
// the runtime. A nil *Metrics records nothing.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lattice"

// Metrics holds the runtime's collectors on a private registry so several
// instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	Frames          prometheus.Counter
	FrameDuration   prometheus.Histogram
	Polls           prometheus.Counter
	PendingOps      *prometheus.GaugeVec
	OpsCompleted    *prometheus.CounterVec
	TaskSets        *prometheus.CounterVec
	Navigations     *prometheus.CounterVec
	Lifecycle       *prometheus.CounterVec
	BusPublishes    *prometheus.CounterVec
	InputEvents     *prometheus.CounterVec
	SettleIteration prometheus.Histogram
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "frames_total",
			Help:      "Total number of frames composed",
		}),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "frame_seconds",
			Help:      "Time spent composing a frame",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		Polls: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "polls_total",
			Help:      "Total number of poll ticks",
		}),
		PendingOps: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pending_ops",
			Help:      "Deferred operations not yet delivered",
		}, []string{"app"}),
		OpsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ops_completed_total",
			Help:      "Deferred operations whose result reached update",
		}, []string{"app", "kind"}),
		TaskSets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "task_sets_total",
			Help:      "Parallel task sets by phase",
		}, []string{"app", "phase"}),
		Navigations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apps",
			Name:      "navigations_total",
			Help:      "Navigations by target app",
		}, []string{"to"}),
		Lifecycle: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "apps",
			Name:      "lifecycle_transitions_total",
			Help:      "Lifecycle transitions by app and resulting state",
		}, []string{"app", "state"}),
		BusPublishes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "publishes_total",
			Help:      "Events mirrored to the external bus",
		}, []string{"result"}),
		InputEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "events_total",
			Help:      "Input events by kind",
		}, []string{"kind"}),
		SettleIteration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "apps",
			Name:      "settle_iterations",
			Help:      "Iterations the settling loop needed",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFrame records one composed frame.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	m.FrameDuration.Observe(d.Seconds())
}

// ObservePoll records one poll tick.
func (m *Metrics) ObservePoll() {
	if m == nil {
		return
	}
	m.Polls.Inc()
}

// SetPending records how many deferred operations app is waiting on.
func (m *Metrics) SetPending(app string, n int) {
	if m == nil {
		return
	}
	m.PendingOps.WithLabelValues(app).Set(float64(n))
}

// OpCompleted records a delivered result. kind is "perform", "task" or
// "timer".
func (m *Metrics) OpCompleted(app, kind string) {
	if m == nil {
		return
	}
	m.OpsCompleted.WithLabelValues(app, kind).Inc()
}

// TaskSet records a parallel task set phase: "started" or "done".
func (m *Metrics) TaskSet(app, phase string) {
	if m == nil {
		return
	}
	m.TaskSets.WithLabelValues(app, phase).Inc()
}

// Navigated records a navigation to app.
func (m *Metrics) Navigated(to string) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(to).Inc()
}

// Transition records app entering state.
func (m *Metrics) Transition(app, state string) {
	if m == nil {
		return
	}
	m.Lifecycle.WithLabelValues(app, state).Inc()
}

// BusPublished records a mirror attempt.
func (m *Metrics) BusPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.BusPublishes.WithLabelValues(result).Inc()
}

// BusDropped records an event the rate limiter refused.
func (m *Metrics) BusDropped() {
	if m == nil {
		return
	}
	m.BusPublishes.WithLabelValues("dropped").Inc()
}

// Input records one input event of kind.
func (m *Metrics) Input(kind string) {
	if m == nil {
		return
	}
	m.InputEvents.WithLabelValues(kind).Inc()
}

// Settled records how many iterations a settling pass took.
func (m *Metrics) Settled(iterations int) {
	if m == nil {
		return
	}
	m.SettleIteration.Observe(float64(iterations))
}
