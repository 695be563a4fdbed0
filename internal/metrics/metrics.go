// Package metrics exposes controller measurements as Prometheus collectors.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/meetbot/internal/domain"
)

// Label names.
const (
	LabelStep    = "step"
	LabelResult  = "result"
	LabelTrigger = "trigger"
)

// Metrics implements app.Recorder with Prometheus collectors.
type Metrics struct {
	stepResults  *prometheus.CounterVec
	ticks        prometheus.Counter
	lastTickTime prometheus.Gauge
	shutdowns    *prometheus.CounterVec

	lastTick atomic.Int64 // unix nanoseconds
}

// NewMetrics creates the collectors and registers them with registry.
// A nil registry leaves them unregistered, which is convenient in tests.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meetbot",
				Subsystem: "lifecycle",
				Name:      "step_results_total",
				Help:      "Startup step outcomes by step and result code.",
			},
			[]string{LabelStep, LabelResult},
		),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meetbot",
			Subsystem: "loop",
			Name:      "ticks_total",
			Help:      "Liveness ticks serviced by the event loop.",
		}),
		lastTickTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meetbot",
			Subsystem: "loop",
			Name:      "last_tick_timestamp_seconds",
			Help:      "Unix time of the most recent liveness tick.",
		}),
		shutdowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meetbot",
				Subsystem: "lifecycle",
				Name:      "shutdowns_total",
				Help:      "Teardowns performed, by trigger.",
			},
			[]string{LabelTrigger},
		),
	}

	if registry != nil {
		registry.MustRegister(m.stepResults, m.ticks, m.lastTickTime, m.shutdowns)
	}
	return m
}

// StepResult counts the outcome of a startup step.
func (m *Metrics) StepResult(step string, code domain.ResultCode) {
	m.stepResults.WithLabelValues(step, code.String()).Inc()
}

// Tick records a liveness tick.
func (m *Metrics) Tick(now time.Time) {
	m.ticks.Inc()
	m.lastTickTime.Set(float64(now.UnixNano()) / 1e9)
	m.lastTick.Store(now.UnixNano())
}

// Shutdown counts a teardown.
func (m *Metrics) Shutdown(trigger string) {
	m.shutdowns.WithLabelValues(trigger).Inc()
}

// LastTick returns the time of the latest tick, or the zero time before the first.
func (m *Metrics) LastTick() time.Time {
	ns := m.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Healthy reports whether a tick happened within maxAge of now.
func (m *Metrics) Healthy(now time.Time, maxAge time.Duration) bool {
	last := m.LastTick()
	return !last.IsZero() && now.Sub(last) <= maxAge
}
