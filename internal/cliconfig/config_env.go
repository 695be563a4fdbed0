package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by meetbot.
const EnvPrefix = "MEETBOT_"

// ApplyEnvConfig applies configuration from environment variables (MEETBOT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("join-url", os.Getenv("MEETBOT_JOIN_URL"), &cfg.JoinURL)
	s.setString("meeting-id", os.Getenv("MEETBOT_MEETING_ID"), &cfg.MeetingID)
	s.setString("password", os.Getenv("MEETBOT_PASSWORD"), &cfg.Password)
	s.setString("display-name", os.Getenv("MEETBOT_DISPLAY_NAME"), &cfg.DisplayName)
	s.setString("zak", os.Getenv("MEETBOT_ZAK"), &cfg.ZAK)
	s.setString("client-id", os.Getenv("MEETBOT_CLIENT_ID"), &cfg.ClientID)
	s.setString("client-secret", os.Getenv("MEETBOT_CLIENT_SECRET"), &cfg.ClientSecret)
	s.setString("service-url", os.Getenv("MEETBOT_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("log-level", os.Getenv("MEETBOT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("MEETBOT_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setDuration("timeout", os.Getenv("MEETBOT_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tick", os.Getenv("MEETBOT_TICK_INTERVAL"), &cfg.TickInterval); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("MEETBOT_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
