package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify workspace configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	accessors := map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"workspace.name":        stringAccessor(func(c *config.Config) *string { return &c.Workspace.Name }),
		"workspace.description": stringAccessor(func(c *config.Config) *string { return &c.Workspace.Description }),
		"store": {
			get: func(c *config.Config) any { return c.Store },
		},
		"goals_dir": {
			get: func(c *config.Config) any { return c.GoalsDir },
		},
		"db_path": {
			get: func(c *config.Config) any { return c.DBFile() },
		},
		"schedule.hours_per_day": {
			get: func(c *config.Config) any { return c.Schedule.HoursPerDay },
			set: func(c *config.Config, v string) error {
				h, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput,
						"invalid schedule.hours_per_day %q: must be a number", v)
				}
				c.Schedule.HoursPerDay = h
				return nil // validation handles range check
			},
			writable: true,
		},
		"schedule.start_time": {
			get: func(c *config.Config) any { return c.Schedule.StartTime },
			set: func(c *config.Config, v string) error {
				if _, err := date.ParseClock(v); err != nil {
					return clierr.Newf(clierr.InvalidTime,
						"invalid schedule.start_time %q (expected HH:MM)", v)
				}
				c.Schedule.StartTime = v
				return nil
			},
			writable: true,
		},
		"schedule.timezone":         stringAccessor(func(c *config.Config) *string { return &c.Schedule.Timezone }),
		"calendar.name":             stringAccessor(func(c *config.Config) *string { return &c.Calendar.Name }),
		"calendar.credentials_file": stringAccessor(func(c *config.Config) *string { return &c.Calendar.CredentialsFile }),
		"calendar.token_file":       stringAccessor(func(c *config.Config) *string { return &c.Calendar.TokenFile }),
		"log.level": {
			get: func(c *config.Config) any { return c.Log.Level },
			set: func(c *config.Config, v string) error {
				c.Log.Level = strings.ToLower(v)
				return nil
			},
			writable: true,
		},
		"log.encoding": {
			get: func(c *config.Config) any { return c.Log.Encoding },
			set: func(c *config.Config, v string) error {
				c.Log.Encoding = strings.ToLower(v)
				return nil
			},
			writable: true,
		},
		"next_goal_id": {
			get: func(c *config.Config) any { return c.NextGoalID },
		},
	}
	return accessors
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"workspace.name",
		"workspace.description",
		"store",
		"goals_dir",
		"db_path",
		"schedule.hours_per_day",
		"schedule.start_time",
		"schedule.timezone",
		"calendar.name",
		"calendar.credentials_file",
		"calendar.token_file",
		"log.level",
		"log.encoding",
		"next_goal_id",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-26s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}
	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return clierr.New(clierr.InvalidInput, err.Error()).
				WithDetails(map[string]any{"key": key, "value": value})
		}
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}
	output.Messagef(os.Stdout, outputFormat(), "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "allowed": allConfigKeys()})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return "--"
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
