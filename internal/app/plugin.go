package app

import (
	"context"

	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/eventloop"
	"github.com/bft-labs/meetbot/pkg/log"
)

// Plugin extends a running bot. Plugins are initialized in registration
// order once startup has succeeded and shut down in reverse order if the
// event loop returns. Process termination through the shutdown path does not
// call Shutdown; plugins must not hold state that outlives the process.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to every plugin on Initialize.
type PluginConfig struct {
	Settings cliconfig.Config
	Logger   log.Logger

	// Loop is the running event loop. Plugins post work to it instead of
	// touching shared state from their own goroutines.
	Loop *eventloop.Loop
}
