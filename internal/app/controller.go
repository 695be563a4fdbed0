package app

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/eventloop"
	"github.com/bft-labs/meetbot/internal/ports"
	"github.com/bft-labs/meetbot/pkg/log"
)

// LivenessTask is the name of the recurring tick registered on the loop.
const LivenessTask = "liveness"

// Controller owns the whole process lifecycle of one bot: signal trapping,
// the startup sequence, the event loop and the single teardown.
type Controller struct {
	client      ports.MeetingClient
	opts        options
	logger      log.Logger
	lifecycle   *Lifecycle
	sequencer   *Sequencer
	coordinator *Coordinator
	loop        *eventloop.Loop

	started []Plugin
}

// New wires a controller around client.
func New(client ports.MeetingClient, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Discard
	}
	if o.recorder == nil {
		o.recorder = noopRecorder{}
	}

	lifecycle := NewLifecycle(o.logger, o.eventEmitter)
	return &Controller{
		client:    client,
		opts:      o,
		logger:    o.logger,
		lifecycle: lifecycle,
		sequencer: NewSequencer(client, lifecycle, o.logger, o.recorder),
		coordinator: NewCoordinator(CoordinatorConfig{
			Client:    client,
			Lifecycle: lifecycle,
			Logger:    o.logger,
			Recorder:  o.recorder,
			Status:    o.status,
			Exit:      o.exit,
			Notify:    o.notify,
		}),
		loop: eventloop.New(o.logger),
	}
}

// Run traps termination signals, runs the startup sequence with args and,
// if every step succeeds, blocks in the event loop.
//
// A failed step is returned as *domain.StepError and the loop is never
// entered. Run returns nil when the loop is quit or ctx is canceled. It does
// not tear down; callers finish with Exit.
func (c *Controller) Run(ctx context.Context, args []string) error {
	c.coordinator.HandleSignals(c.opts.signals...)

	if err := c.sequencer.Run(ctx, args); err != nil {
		return err
	}

	settings := c.settings()
	interval := c.opts.tickInterval
	if settings.TickInterval > 0 {
		interval = settings.TickInterval
	}
	if err := c.loop.AddTask(LivenessTask, interval, c.tick); err != nil {
		return err
	}

	c.startPlugins(ctx, settings)
	defer c.stopPlugins()

	c.logger.Info("bot running", log.Duration("tick", interval))
	err := c.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		c.logger.Info("event loop canceled")
		return nil
	}
	return err
}

func (c *Controller) tick(now time.Time) bool {
	c.opts.recorder.Tick(now)
	return true
}

func (c *Controller) settings() cliconfig.Config {
	if c.opts.settings == nil {
		return cliconfig.Config{}
	}
	return c.opts.settings()
}

func (c *Controller) startPlugins(ctx context.Context, settings cliconfig.Config) {
	for _, p := range c.opts.plugins {
		cfg := PluginConfig{
			Settings: settings,
			Logger:   log.With(c.logger, log.String("plugin", p.Name())),
			Loop:     c.loop,
		}
		if err := p.Initialize(ctx, cfg); err != nil {
			c.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
			continue
		}
		c.started = append(c.started, p)
		c.logger.Debug("plugin initialized", log.String("plugin", p.Name()))
	}
}

func (c *Controller) stopPlugins() {
	ctx := context.Background()
	for i := len(c.started) - 1; i >= 0; i-- {
		p := c.started[i]
		if err := p.Shutdown(ctx); err != nil {
			c.logger.Warn("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err),
			)
		}
	}
	c.started = nil
}

// Exit performs the single teardown, or waits for one already in progress,
// and terminates the process with code.
func (c *Controller) Exit(code int) {
	c.coordinator.Exit(code)
}

// Shutdown runs teardown without terminating the process. It reports whether
// this call performed the work.
func (c *Controller) Shutdown() bool {
	return c.coordinator.Shutdown(TriggerExit)
}

// Done is closed once teardown has completed.
func (c *Controller) Done() <-chan struct{} {
	return c.coordinator.Done()
}

// Quit asks the event loop to return.
func (c *Controller) Quit() {
	c.loop.Quit()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.lifecycle.State()
}
