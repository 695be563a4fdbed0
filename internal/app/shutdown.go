package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/internal/ports"
	"github.com/bft-labs/meetbot/pkg/log"
)

// Shutdown triggers as they appear in logs and metrics.
const (
	TriggerExit   = "exit"
	TriggerSignal = "signal"
)

// ExitMessage is written to the status writer once teardown completes.
const ExitMessage = "exiting..."

// ExitFunc terminates the process. It must not return in production.
type ExitFunc func(code int)

// NotifyFunc subscribes a channel to signals; signal.Notify in production.
type NotifyFunc func(c chan<- os.Signal, sig ...os.Signal)

// CoordinatorConfig holds the dependencies of a Coordinator.
type CoordinatorConfig struct {
	Client    ports.MeetingClient
	Lifecycle *Lifecycle
	Logger    log.Logger
	Recorder  Recorder

	// Status receives the final console notice. Default: os.Stdout.
	Status io.Writer

	// Exit is called after teardown on the signal and normal exit paths.
	// Default: os.Exit.
	Exit ExitFunc

	// Notify installs the signal subscription. Default: signal.Notify.
	Notify NotifyFunc
}

// Coordinator performs teardown exactly once, whichever path asks first.
//
// The only state shared between the normal exit path and the signal goroutine
// is an atomic flag and the lifecycle's atomic state. Teardown is: enter
// ShuttingDown, Leave, Release, print the exit notice, enter Terminated.
type Coordinator struct {
	client    ports.MeetingClient
	lifecycle *Lifecycle
	logger    log.Logger
	recorder  Recorder
	status    io.Writer
	exit      ExitFunc
	notify    NotifyFunc

	shutdownStarted atomic.Bool
	trapped         atomic.Bool
	done            chan struct{}
}

// NewCoordinator creates a coordinator. Client and Lifecycle are required.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	c := &Coordinator{
		client:    cfg.Client,
		lifecycle: cfg.Lifecycle,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
		status:    cfg.Status,
		exit:      cfg.Exit,
		notify:    cfg.Notify,
		done:      make(chan struct{}),
	}
	if c.logger == nil {
		c.logger = log.Discard
	}
	if c.recorder == nil {
		c.recorder = noopRecorder{}
	}
	if c.status == nil {
		c.status = os.Stdout
	}
	if c.exit == nil {
		c.exit = os.Exit
	}
	if c.notify == nil {
		c.notify = signal.Notify
	}
	return c
}

// Shutdown runs teardown if no other caller has started it.
// It returns true only for the caller that performed the work; every later
// caller returns false immediately without side effects. Use Done to wait
// for a teardown started elsewhere.
func (c *Coordinator) Shutdown(trigger string) bool {
	if !c.shutdownStarted.CompareAndSwap(false, true) {
		return false
	}
	defer close(c.done)

	c.recorder.Shutdown(trigger)
	if err := c.lifecycle.TransitionTo(StateShuttingDown, trigger); err != nil {
		c.logger.Debug("shutdown transition refused", log.Err(err))
	}

	// Release runs whatever Leave does.
	if code := c.leave(); !code.OK() {
		c.logger.Warn("failed to leave",
			log.Int("status", int(code)),
			log.String("result", code.String()),
		)
	}
	c.client.Release()

	fmt.Fprintln(c.status, ExitMessage)

	if err := c.lifecycle.TransitionTo(StateTerminated, trigger); err != nil {
		c.logger.Debug("terminate transition refused", log.Err(err))
	}
	return true
}

func (c *Coordinator) leave() (code domain.ResultCode) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("leave panicked", log.Any("panic", r))
			code = domain.ResultInternalError
		}
	}()
	return c.client.Leave(context.Background())
}

// Done is closed once teardown has completed.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// HandleSignals traps the given termination signals. The first one delivered
// runs teardown (or waits for a teardown already in progress) and then
// terminates the process with the signal number as exit status. Control
// never returns to the interrupted work. Only the first call has an effect.
func (c *Coordinator) HandleSignals(sigs ...os.Signal) {
	if !c.trapped.CompareAndSwap(false, true) {
		return
	}

	ch := make(chan os.Signal, 1)
	c.notify(ch, sigs...)

	go func() {
		sig := <-ch
		c.logger.Info("received signal, shutting down", log.String("signal", sig.String()))
		c.Shutdown(TriggerSignal)
		<-c.done
		c.exit(signalNumber(sig))
	}()
}

// Exit is the normal termination path: teardown (or wait for one already
// running), then exit with code.
func (c *Coordinator) Exit(code int) {
	c.Shutdown(TriggerExit)
	<-c.done
	c.exit(code)
}

func signalNumber(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 1
}
