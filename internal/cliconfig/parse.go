package cliconfig

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// NewFlagSet returns the flag set bound to cfg. Defaults are taken from cfg.
func NewFlagSet(cfg *Config, output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("meetbot", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.SortFlags = false

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "path to config file (default: $HOME/.meetbot/config.toml)")

	fs.StringVar(&cfg.JoinURL, "join-url", cfg.JoinURL, "meeting join URL (fills meeting-id and password)")
	fs.StringVar(&cfg.MeetingID, "meeting-id", cfg.MeetingID, "meeting number to join")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "meeting passcode")
	fs.StringVar(&cfg.DisplayName, "display-name", cfg.DisplayName, "name shown to other participants")
	fs.StringVar(&cfg.ZAK, "zak", cfg.ZAK, "user access token for joining as a signed-in user")

	fs.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "SDK client id")
	fs.StringVar(&cfg.ClientSecret, "client-secret", cfg.ClientSecret, "SDK client secret")

	fs.StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, "meeting gateway base URL")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout for gateway calls")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "listen address for /metrics and /healthz (disabled when empty)")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "event loop liveness tick")
	fs.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload the config file when it changes")

	return fs
}

// Parse builds a Config from raw process arguments.
// Precedence is flag > environment (MEETBOT_*) > config file > default.
// A --help request returns pflag.ErrHelp after usage has been written to output.
func Parse(args []string, output io.Writer) (Config, error) {
	cfg := DefaultConfig()
	fs := NewFlagSet(&cfg, output)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := cfg.ConfigPath
	if cfgFile == "" {
		cfgFile = DefaultConfigPath()
	}
	switch {
	case cfgFile != "" && FileExists(cfgFile):
		fc, err := LoadFileConfig(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
		cfg.ConfigPath = cfgFile
	case changed["config"]:
		return cfg, fmt.Errorf("config file not found: %s", cfgFile)
	}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}
	if err := ApplyJoinURL(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
