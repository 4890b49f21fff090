package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestLevel_ToSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level("verbose"), slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := tt.level.ToSlogLevel(); got != tt.want {
			t.Errorf("%q.ToSlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestConfig_NormalizeAndValidate(t *testing.T) {
	cfg := Config{Level: " DEBUG ", Format: "JSON"}
	cfg.Normalize()
	if cfg.Level != LevelDebug || cfg.Format != FormatJSON {
		t.Fatalf("Normalize() = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	empty := Config{}
	empty.Normalize()
	if empty.Level != LevelInfo || empty.Format != FormatText {
		t.Errorf("defaults = %+v", empty)
	}

	if err := (Config{Level: "loud", Format: FormatText}).Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	if err := (Config{Level: LevelInfo, Format: "xml"}).Validate(); err == nil {
		t.Error("expected invalid format error")
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Format: FormatJSON}, &buf)

	log.Info("dropped")
	log.Warn("kept", "routes", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "kept" || rec["routes"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Format: FormatText}, &buf)
	log.Debug("route descriptor", "id", "posts")
	if !strings.Contains(buf.String(), "id=posts") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard should not be enabled at any level")
	}
}
