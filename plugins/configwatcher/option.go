package configwatcher

import "github.com/bft-labs/meetbot/internal/app"

// WithConfigWatcher returns a controller Option that enables config file
// watching.
//
// Usage:
//
//	ctrl := app.New(client,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) app.Option {
	return app.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher enables config watching with default settings.
func WithDefaultConfigWatcher() app.Option {
	return WithConfigWatcher(DefaultConfig())
}
