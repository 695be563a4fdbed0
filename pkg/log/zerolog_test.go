package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"DEBUG", LevelDebug, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetLevel_FiltersMessages(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf))

	SetLevel(LevelWarn)
	if CurrentLevel() != LevelWarn {
		t.Fatalf("CurrentLevel() = %q, want warn", CurrentLevel())
	}

	logger.Info("hidden")
	logger.Warn("shown", String("step", "authorize"), Err(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, `"step":"authorize"`) || !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("warn message missing fields: %s", out)
	}
}

func TestZerologAdapter_With(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	SetLevel(LevelDebug)

	var buf bytes.Buffer
	logger := NewZerologAdapterWithLogger(zerolog.New(&buf)).With(String("component", "loop"))
	logger.Debug("tick", Int("n", 3))

	out := buf.String()
	if !strings.Contains(out, `"component":"loop"`) || !strings.Contains(out, `"n":3`) {
		t.Errorf("unexpected output: %s", out)
	}
}
