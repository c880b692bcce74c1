package config

import "fmt"

// migrate upgrades a config from its current version to CurrentVersion.
// Each migration function transforms the config one version forward.
// Returns an error if the config version is newer than what this binary supports.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade goalplan)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}

	return nil
}

// migrations maps each version to the function that migrates it to the next version.
// The migration function must increment cfg.Version after a successful migration.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
	2: migrateV2ToV3,
}

// migrateV1ToV2 adds the schedule section.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Schedule.HoursPerDay == 0 {
		cfg.Schedule.HoursPerDay = DefaultHoursPerDay
	}
	if cfg.Schedule.StartTime == "" {
		cfg.Schedule.StartTime = DefaultStartTime
	}
	cfg.Version = 2
	return nil
}

// migrateV2ToV3 adds store selection, calendar publishing, and logging.
func migrateV2ToV3(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Store == "" {
		cfg.Store = StoreFile
	}
	if cfg.Calendar.Name == "" {
		cfg.Calendar.Name = DefaultCalendarName
	}
	if cfg.Calendar.CredentialsFile == "" {
		cfg.Calendar.CredentialsFile = DefaultCredentialsFile
	}
	if cfg.Calendar.TokenFile == "" {
		cfg.Calendar.TokenFile = DefaultTokenFile
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = DefaultLogEncoding
	}
	cfg.Version = 3
	return nil
}
