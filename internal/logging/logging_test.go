package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestBuildToFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := BuildTo(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", zap.Int("goal_id", 3))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "shown" || entry["goal_id"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	buf.Reset()
	zap.L().Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("expected debug entry after SetLevel, got %q", buf.String())
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	if _, err := BuildTo(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := BuildTo(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
