package cliconfig

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/meetbot/pkg/log"
)

// DefaultServiceURL is the default meeting gateway endpoint.
const DefaultServiceURL = "http://127.0.0.1:8787"

// Config holds the bot configuration assembled from flags, environment and file.
type Config struct {
	ConfigPath string

	JoinURL     string
	MeetingID   string
	Password    string
	DisplayName string
	ZAK         string

	ClientID     string
	ClientSecret string

	ServiceURL  string
	HTTPTimeout time.Duration

	LogLevel     string
	MetricsAddr  string
	TickInterval time.Duration
	WatchConfig  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DisplayName:  "meetbot",
		ServiceURL:   DefaultServiceURL,
		HTTPTimeout:  15 * time.Second,
		LogLevel:     string(log.LevelInfo),
		TickInterval: 100 * time.Millisecond,
		WatchConfig:  true,
	}
}

// Validate checks the configuration for errors and normalizes derived values.
func (c *Config) Validate() error {
	if c.MeetingID == "" {
		return fmt.Errorf("meeting-id is required (or join-url)")
	}
	id := strings.NewReplacer(" ", "", "-", "").Replace(c.MeetingID)
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fmt.Errorf("meeting-id must be numeric: %q", c.MeetingID)
	}
	c.MeetingID = id

	if c.ClientID == "" {
		return fmt.Errorf("client-id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client-secret is required")
	}
	if c.DisplayName == "" {
		return fmt.Errorf("display-name must not be empty")
	}

	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")
	u, err := url.Parse(c.ServiceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service-url must be an http(s) URL: %q", c.ServiceURL)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	c.LogLevel = string(level)

	return nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.ClientSecret != "" {
		c.ClientSecret = "*****"
	}
	if c.Password != "" {
		c.Password = "*****"
	}
	if c.ZAK != "" {
		c.ZAK = "*****"
	}
	if c.JoinURL != "" {
		if u, err := url.Parse(c.JoinURL); err == nil && u.RawQuery != "" {
			u.RawQuery = "*****"
			c.JoinURL = u.String()
		}
	}
	return c
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
