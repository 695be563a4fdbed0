package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ApplyJoinURL fills MeetingID and Password from cfg.JoinURL when they were
// not provided explicitly. Supported forms:
//
//	https://host/j/<id>?pwd=<password>
//	https://host/wc/join/<id>?pwd=<password>
//	https://host/s/<id>
func ApplyJoinURL(cfg *Config) error {
	if cfg.JoinURL == "" {
		return nil
	}
	id, pwd, err := parseJoinURL(cfg.JoinURL)
	if err != nil {
		return err
	}
	if cfg.MeetingID == "" {
		cfg.MeetingID = id
	}
	if cfg.Password == "" {
		cfg.Password = pwd
	}
	return nil
}

func parseJoinURL(raw string) (id, pwd string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse join-url: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("join-url has no host: %q", raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		switch segments[i] {
		case "j", "s", "join":
			if isDigits(segments[i+1]) {
				id = segments[i+1]
			}
		}
	}
	if id == "" {
		return "", "", fmt.Errorf("join-url has no meeting id: %q", raw)
	}
	return id, u.Query().Get("pwd"), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
