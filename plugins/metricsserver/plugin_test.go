package metricsserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/meetbot/internal/app"
	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestRouter_Healthz(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	p := New(Config{Gatherer: reg, Metrics: m, MaxTickAge: time.Second})

	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }
	h := p.Router()

	if code, _ := get(t, h, "/healthz"); code != http.StatusServiceUnavailable {
		t.Errorf("before first tick: status = %d, want 503", code)
	}

	m.Tick(now.Add(-500 * time.Millisecond))
	if code, body := get(t, h, "/healthz"); code != http.StatusOK || body != "ok\n" {
		t.Errorf("fresh tick: status = %d body = %q", code, body)
	}

	now = now.Add(time.Hour)
	if code, _ := get(t, h, "/healthz"); code != http.StatusServiceUnavailable {
		t.Errorf("stale tick: status = %d, want 503", code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.Tick(time.Now())
	m.Shutdown(app.TriggerSignal)

	code, body := get(t, New(Config{Gatherer: reg, Metrics: m}).Router(), "/metrics")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	for _, want := range []string{
		"meetbot_loop_ticks_total 1",
		`meetbot_lifecycle_shutdowns_total{trigger="signal"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	p := New(Config{Gatherer: prometheus.NewRegistry()})
	if code, _ := get(t, p.Router(), "/nope"); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestPlugin_ServeAndShutdown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.Tick(time.Now())
	p := New(Config{Gatherer: reg, Metrics: m})

	err := p.Initialize(context.Background(), app.PluginConfig{
		Settings: cliconfig.Config{MetricsAddr: "127.0.0.1:0", TickInterval: time.Minute},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if p.Addr() == nil {
		t.Fatal("Addr() = nil after Initialize")
	}

	resp, err := http.Get("http://" + p.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d body = %q", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown failed: %v", err)
	}
}

func TestPlugin_DisabledWithoutAddress(t *testing.T) {
	p := New(Config{})
	if err := p.Initialize(context.Background(), app.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if p.Addr() != nil {
		t.Error("listening without an address")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
