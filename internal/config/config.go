package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no goalplan workspace found (run 'goalplan init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the workspace configuration.
type Config struct {
	Version    int             `yaml:"version"`
	Workspace  WorkspaceConfig `yaml:"workspace"`
	Store      string          `yaml:"store"`
	GoalsDir   string          `yaml:"goals_dir"`
	DBPath     string          `yaml:"db_path,omitempty"`
	Schedule   ScheduleConfig  `yaml:"schedule"`
	Calendar   CalendarConfig  `yaml:"calendar"`
	Log        LogConfig       `yaml:"log"`
	NextGoalID int             `yaml:"next_goal_id"`

	// dir is the absolute path to the workspace directory (not serialized).
	dir string `yaml:"-"`
}

// WorkspaceConfig holds workspace metadata.
type WorkspaceConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ScheduleConfig holds scheduler defaults.
type ScheduleConfig struct {
	HoursPerDay float64 `yaml:"hours_per_day"`
	StartTime   string  `yaml:"start_time"`
	Timezone    string  `yaml:"timezone,omitempty"` // IANA name; empty means local
}

// CalendarConfig holds Google Calendar publishing settings.
type CalendarConfig struct {
	Name            string `yaml:"name"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Dir returns the absolute path to the workspace directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the workspace directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// GoalsPath returns the absolute path to the goals directory.
func (c *Config) GoalsPath() string {
	return c.resolve(c.GoalsDir)
}

// DBFile returns the absolute path to the sqlite database.
func (c *Config) DBFile() string {
	if c.DBPath == "" {
		return c.resolve(DefaultDBFile)
	}
	return c.resolve(c.DBPath)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// CredentialsPath returns the absolute path to the OAuth client secret file.
func (c *Config) CredentialsPath() string {
	return c.resolve(c.Calendar.CredentialsFile)
}

// TokenPath returns the absolute path to the cached OAuth token.
func (c *Config) TokenPath() string {
	return c.resolve(c.Calendar.TokenFile)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// StartClock returns the configured start of the working day.
func (c *Config) StartClock() date.Clock {
	clock, err := date.ParseClock(c.Schedule.StartTime)
	if err != nil {
		return date.MustClock(DefaultStartTime)
	}
	return clock
}

// Location returns the configured scheduling timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.timezone %q: %w", ErrInvalid, c.Schedule.Timezone, err)
	}
	return loc, nil
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:   CurrentVersion,
		Workspace: WorkspaceConfig{Name: name},
		Store:     StoreFile,
		GoalsDir:  DefaultGoalsDir,
		Schedule: ScheduleConfig{
			HoursPerDay: DefaultHoursPerDay,
			StartTime:   DefaultStartTime,
		},
		Calendar: CalendarConfig{
			Name:            DefaultCalendarName,
			CredentialsFile: DefaultCredentialsFile,
			TokenFile:       DefaultTokenFile,
		},
		Log: LogConfig{
			Level:    DefaultLogLevel,
			Encoding: DefaultLogEncoding,
		},
		NextGoalID: 1,
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Workspace.Name == "" {
		return fmt.Errorf("%w: workspace.name is required", ErrInvalid)
	}
	if !contains(Stores, c.Store) {
		return fmt.Errorf("%w: store %q must be one of %v", ErrInvalid, c.Store, Stores)
	}
	if c.GoalsDir == "" {
		return fmt.Errorf("%w: goals_dir is required", ErrInvalid)
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if c.Calendar.Name == "" {
		return fmt.Errorf("%w: calendar.name is required", ErrInvalid)
	}
	if c.NextGoalID < 1 {
		return fmt.Errorf("%w: next_goal_id must be >= 1", ErrInvalid)
	}
	return nil
}

func (c *Config) validateSchedule() error {
	h := c.Schedule.HoursPerDay
	if math.IsNaN(h) || h <= 0 || h > 24 {
		return fmt.Errorf("%w: schedule.hours_per_day must be in (0, 24], got %v", ErrInvalid, h)
	}
	if _, err := date.ParseClock(c.Schedule.StartTime); err != nil {
		return fmt.Errorf("%w: schedule.start_time: %w", ErrInvalid, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLog() error {
	if !contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("%w: log.level %q must be one of %v", ErrInvalid, c.Log.Level, LogLevels)
	}
	if !contains(LogEncodings, c.Log.Encoding) {
		return fmt.Errorf("%w: log.encoding %q must be one of %v", ErrInvalid, c.Log.Encoding, LogEncodings)
	}
	return nil
}

// Init validates cfg and writes it as a new workspace in dir, creating the
// workspace directory and, for the file store, the goals subdirectory.
func Init(dir string, cfg *Config) error {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	cfg.SetDir(absDir)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}
	if cfg.Store == StoreFile {
		if err := os.MkdirAll(cfg.GoalsPath(), dirMode); err != nil {
			return fmt.Errorf("creating goals directory: %w", err)
		}
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given workspace directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a workspace directory
// containing config.yml. Returns the absolute path to the workspace directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the workspace directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.WorkspaceNotFound,
				"no goalplan workspace found (run 'goalplan init' to create one)")
		}
		dir = parent
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
