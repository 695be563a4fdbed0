package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bft-labs/meetbot/internal/domain"
)

func TestNewMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.StepResult("configure", domain.ResultSuccess)
	m.Tick(time.Now())
	m.Shutdown("exit")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"meetbot_lifecycle_step_results_total",
		"meetbot_loop_ticks_total",
		"meetbot_loop_last_tick_timestamp_seconds",
		"meetbot_lifecycle_shutdowns_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(nil)

	m.StepResult("configure", domain.ResultSuccess)
	m.StepResult("authorize", domain.ResultInvalidParameter)
	m.StepResult("authorize", domain.ResultInvalidParameter)
	m.Shutdown("signal")

	if got := testutil.ToFloat64(m.stepResults.WithLabelValues("authorize", "InvalidParameter")); got != 2 {
		t.Errorf("authorize failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.shutdowns.WithLabelValues("signal")); got != 1 {
		t.Errorf("signal shutdowns = %v, want 1", got)
	}
}

func TestMetrics_Healthy(t *testing.T) {
	m := NewMetrics(nil)
	now := time.Now()

	if m.Healthy(now, time.Second) {
		t.Error("Healthy() = true before any tick")
	}
	if !m.LastTick().IsZero() {
		t.Error("LastTick() not zero before any tick")
	}

	m.Tick(now)
	if !m.Healthy(now.Add(500*time.Millisecond), time.Second) {
		t.Error("Healthy() = false for a fresh tick")
	}
	if m.Healthy(now.Add(2*time.Second), time.Second) {
		t.Error("Healthy() = true for a stale tick")
	}
	if got := testutil.ToFloat64(m.ticks); got != 1 {
		t.Errorf("ticks = %v, want 1", got)
	}
}
