// Package metricsserver exposes Prometheus metrics and a liveness probe over
// HTTP while the bot is running.
package metricsserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/meetbot/internal/app"
	"github.com/bft-labs/meetbot/internal/metrics"
	"github.com/bft-labs/meetbot/pkg/log"
)

// staleTicks is how many liveness ticks may be missed before /healthz fails.
const staleTicks = 10

// Config holds configuration options for the metrics server plugin.
type Config struct {
	// Gatherer serves /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Metrics provides the last liveness tick for /healthz. Required.
	Metrics *metrics.Metrics

	// MaxTickAge overrides the /healthz staleness threshold.
	// Default: 10 liveness ticks.
	MaxTickAge time.Duration
}

// Plugin serves GET /metrics and GET /healthz on Settings.MetricsAddr.
type Plugin struct {
	gatherer   prometheus.Gatherer
	metrics    *metrics.Metrics
	maxTickAge time.Duration
	now        func() time.Time

	mu     sync.Mutex
	logger log.Logger
	server *http.Server
	addr   net.Addr
	wg     sync.WaitGroup
}

// New creates a metrics server plugin.
func New(cfg Config) *Plugin {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &Plugin{
		gatherer:   cfg.Gatherer,
		metrics:    cfg.Metrics,
		maxTickAge: cfg.MaxTickAge,
		now:        time.Now,
		logger:     log.Discard,
	}
}

// WithMetricsServer returns a controller Option that registers the plugin.
func WithMetricsServer(cfg Config) app.Option {
	return app.WithPlugin(New(cfg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "metricsserver"
}

// Initialize binds the listener and starts serving. Without a metrics address
// the plugin stays idle.
func (p *Plugin) Initialize(_ context.Context, cfg app.PluginConfig) error {
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	if cfg.Settings.MetricsAddr == "" {
		p.logger.Debug("metrics server disabled")
		return nil
	}
	if p.maxTickAge <= 0 {
		tick := cfg.Settings.TickInterval
		if tick <= 0 {
			tick = app.DefaultTickInterval
		}
		p.maxTickAge = staleTicks * tick
	}

	ln, err := net.Listen("tcp", cfg.Settings.MetricsAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           p.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	p.mu.Lock()
	p.server = srv
	p.addr = ln.Addr()
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("metrics server stopped", log.Err(err))
		}
	}()

	p.logger.Info("metrics server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Shutdown stops the HTTP server.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	p.wg.Wait()
	return err
}

// Addr returns the bound listen address, or nil when not serving.
func (p *Plugin) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Router returns the HTTP handler.
func (p *Plugin) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", p.healthz)
	return r
}

func (p *Plugin) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	maxAge := p.maxTickAge
	if maxAge <= 0 {
		maxAge = staleTicks * app.DefaultTickInterval
	}
	if p.metrics == nil || !p.metrics.Healthy(p.now(), maxAge) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("stale\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
