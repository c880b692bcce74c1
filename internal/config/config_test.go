package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
)

func TestInitAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)
	cfg := NewDefault("home")
	if err := Init(dir, cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(cfg.GoalsPath()); err != nil {
		t.Fatalf("expected goals dir: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Workspace.Name != "home" || loaded.Store != StoreFile || loaded.Schedule.HoursPerDay != 8 {
		t.Fatalf("unexpected config %+v", loaded)
	}
	if got := loaded.StartClock().String(); got != "09:00" {
		t.Fatalf("expected start 09:00, got %s", got)
	}
	if loaded.DBFile() != filepath.Join(loaded.Dir(), DefaultDBFile) {
		t.Fatalf("unexpected db path %s", loaded.DBFile())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadMigratesV1(t *testing.T) {
	dir := t.TempDir()
	v1 := "version: 1\nworkspace:\n  name: old\ngoals_dir: goals\nnext_goal_id: 4\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(v1), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Fatalf("expected version %d, got %d", CurrentVersion, cfg.Version)
	}
	if cfg.Schedule.StartTime != DefaultStartTime || cfg.Log.Level != DefaultLogLevel || cfg.Calendar.Name != DefaultCalendarName {
		t.Fatalf("expected migrated defaults, got %+v", cfg)
	}
	if cfg.NextGoalID != 4 {
		t.Fatalf("expected next_goal_id preserved, got %d", cfg.NextGoalID)
	}

	// Migration is persisted.
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Version != CurrentVersion {
		t.Fatalf("expected persisted migration, got version %d", again.Version)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 99\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hours", func(c *Config) { c.Schedule.HoursPerDay = 0 }},
		{"too many hours", func(c *Config) { c.Schedule.HoursPerDay = 25 }},
		{"bad start time", func(c *Config) { c.Schedule.StartTime = "9am" }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"no name", func(c *Config) { c.Workspace.Name = "" }},
		{"next id", func(c *Config) { c.NextGoalID = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault("x")
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
	if err := NewDefault("x").Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestFindDir(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, DefaultDir)
	if err := Init(ws, NewDefault("x")); err != nil {
		t.Fatalf("init: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := FindDir(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != ws {
		t.Fatalf("expected %s, got %s", ws, got)
	}
	if got, err := FindDir(ws); err != nil || got != ws {
		t.Fatalf("expected %s from inside workspace, got %s (%v)", ws, got, err)
	}
}

func TestFindDirMissing(t *testing.T) {
	if _, err := FindDir(t.TempDir()); !clierr.Is(err, clierr.WorkspaceNotFound) {
		t.Fatalf("expected %s, got %v", clierr.WorkspaceNotFound, err)
	}
}
