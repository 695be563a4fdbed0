package app

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/pkg/log"
)

// DefaultTickInterval is the liveness tick period when no setting overrides it.
const DefaultTickInterval = 100 * time.Millisecond

// Option configures optional behavior of a Controller.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventEmitter EventEmitter
	recorder     Recorder
	plugins      []Plugin
	settings     func() cliconfig.Config
	status       io.Writer
	exit         ExitFunc
	notify       NotifyFunc
	signals      []os.Signal
	tickInterval time.Duration
}

func defaultOptions() options {
	return options{
		logger:       log.Discard,
		recorder:     noopRecorder{},
		signals:      []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		tickInterval: DefaultTickInterval,
	}
}

// WithLogger sets the structured logger. Default: no output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventEmitter receives every lifecycle state change.
func WithEventEmitter(emitter EventEmitter) Option {
	return func(o *options) {
		o.eventEmitter = emitter
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithPlugin registers a plugin to be initialized once the bot is running.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithSettings supplies the configuration produced by the configure step.
// It is called only after startup has succeeded.
func WithSettings(settings func() cliconfig.Config) Option {
	return func(o *options) {
		o.settings = settings
	}
}

// WithStatusWriter sets where the final exit notice is printed. Default: stdout.
func WithStatusWriter(w io.Writer) Option {
	return func(o *options) {
		o.status = w
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(exit ExitFunc) Option {
	return func(o *options) {
		o.exit = exit
	}
}

// WithSignalNotify replaces signal.Notify.
func WithSignalNotify(notify NotifyFunc) Option {
	return func(o *options) {
		o.notify = notify
	}
}

// WithSignals sets the trapped termination signals. Default: SIGINT, SIGTERM.
func WithSignals(sigs ...os.Signal) Option {
	return func(o *options) {
		o.signals = sigs
	}
}

// WithTickInterval sets the liveness tick used when settings do not provide one.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		o.tickInterval = d
	}
}
