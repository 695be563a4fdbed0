// Package configwatcher reloads the meetbot config file while the bot runs.
// Only log_level takes effect immediately; any other changed key is reported
// as requiring a restart.
package configwatcher

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/meetbot/internal/app"
	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/eventloop"
	"github.com/bft-labs/meetbot/pkg/log"
)

// Plugin watches the config file's directory and posts reloads onto the
// event loop.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	setLevel      func(log.Level)

	path     string
	current  cliconfig.FileConfig
	logger   log.Logger
	loop     *eventloop.Loop
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the quiet period after the last change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// SetLevel applies a reloaded log level. Default: log.SetLevel.
	SetLevel func(log.Level)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		SetLevel:      log.SetLevel,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.SetLevel == nil {
		cfg.SetLevel = log.SetLevel
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		setLevel:      cfg.SetLevel,
		logger:        log.Discard,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching when a config file is in use and watching is
// enabled.
func (p *Plugin) Initialize(ctx context.Context, cfg app.PluginConfig) error {
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	if !cfg.Settings.WatchConfig || cfg.Settings.ConfigPath == "" || cfg.Loop == nil {
		p.logger.Debug("config watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(cfg.Settings.ConfigPath)); err != nil {
		watcher.Close()
		return err
	}

	current, err := cliconfig.LoadFileConfig(cfg.Settings.ConfigPath)
	if err != nil {
		p.logger.Warn("config watcher: initial read failed", log.Err(err))
	}

	p.mu.Lock()
	p.path = cfg.Settings.ConfigPath
	p.current = current
	p.loop = cfg.Loop
	p.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("config watcher started", log.String("path", p.path))
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if !p.loop.Post(p.reload) {
			p.logger.Warn("config watcher: event loop busy, reload dropped")
		}
	})
}

// reload runs on the event loop goroutine.
func (p *Plugin) reload() {
	p.mu.Lock()
	path, previous := p.path, p.current
	p.mu.Unlock()

	next, err := cliconfig.LoadFileConfig(path)
	if err != nil {
		p.logger.Warn("config reload failed", log.String("path", path), log.Err(err))
		return
	}

	p.mu.Lock()
	p.current = next
	p.mu.Unlock()

	changed := changedKeys(previous, next)
	if len(changed) == 0 {
		return
	}

	var restart []string
	for _, key := range changed {
		if key != "log_level" {
			restart = append(restart, key)
			continue
		}
		level, err := log.ParseLevel(next.LogLevel)
		if err != nil {
			p.logger.Warn("config reload: ignoring log level", log.Err(err))
			continue
		}
		p.setLevel(level)
		p.logger.Info("log level changed", log.String("level", string(level)))
	}
	if len(restart) > 0 {
		p.logger.Warn("config changed; restart to apply", log.String("keys", strings.Join(restart, ",")))
	}
}

// changedKeys returns the TOML keys whose values differ.
func changedKeys(a, b cliconfig.FileConfig) []string {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	t := va.Type()

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		if reflect.DeepEqual(va.Field(i).Interface(), vb.Field(i).Interface()) {
			continue
		}
		keys = append(keys, t.Field(i).Tag.Get("toml"))
	}
	return keys
}
