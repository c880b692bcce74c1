// Package config handles goalplan workspace configuration.
package config

const (
	// DefaultDir is the default workspace directory name.
	DefaultDir = "goalplan"
	// DefaultGoalsDir is the default goals subdirectory name.
	DefaultGoalsDir = "goals"
	// DefaultDBFile is the default sqlite database file name.
	DefaultDBFile = "goalplan.db"

	// StoreFile keeps one markdown file per goal.
	StoreFile = "file"
	// StoreSQLite keeps goals in a sqlite database.
	StoreSQLite = "sqlite"

	// DefaultHoursPerDay is the default daily work capacity.
	DefaultHoursPerDay = 8.0
	// DefaultStartTime is the default start of the working day.
	DefaultStartTime = "09:00"

	// DefaultCalendarName is the Google calendar events are published to.
	DefaultCalendarName = "primary"
	// DefaultCredentialsFile is the OAuth client secret file, relative to the workspace.
	DefaultCredentialsFile = "credentials.json"
	// DefaultTokenFile is the cached OAuth token file, relative to the workspace.
	DefaultTokenFile = "token.json"

	// DefaultLogLevel is the diagnostic log level.
	DefaultLogLevel = "warn"
	// DefaultLogEncoding is the diagnostic log encoding.
	DefaultLogEncoding = "console"

	// ConfigFileName is the name of the config file within the workspace directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3
)

// Allowed values for enumerated settings.
var (
	Stores       = []string{StoreFile, StoreSQLite}
	LogLevels    = []string{"debug", "info", "warn", "error"}
	LogEncodings = []string{"console", "json"}
)
