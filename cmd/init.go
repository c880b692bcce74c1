package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/db"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new goalplan workspace",
	Long:  `Creates a goalplan directory with config.yml and a goals/ subdirectory (or a SQLite database).`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "workspace name (defaults to current directory name)")
	initCmd.Flags().String("store", config.StoreFile, "goal store: file or sqlite")
	initCmd.Flags().Float64("hours-per-day", config.DefaultHoursPerDay, "daily work capacity in hours")
	initCmd.Flags().String("start-time", config.DefaultStartTime, "start of the working day (HH:MM)")
	initCmd.Flags().String("timezone", "", "IANA timezone for schedules (default local)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.WorkspaceExists, "workspace already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg := config.NewDefault(name)
	cfg.Store, _ = cmd.Flags().GetString("store")
	cfg.Schedule.HoursPerDay, _ = cmd.Flags().GetFloat64("hours-per-day")
	cfg.Schedule.StartTime, _ = cmd.Flags().GetString("start-time")
	cfg.Schedule.Timezone, _ = cmd.Flags().GetString("timezone")

	if err := config.Init(absDir, cfg); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			return clierr.New(clierr.InvalidInput, err.Error())
		}
		return err
	}

	location := cfg.GoalsPath()
	if cfg.Store == config.StoreSQLite {
		location = cfg.DBFile()
		store, err := db.OpenStore(location)
		if err != nil {
			return err
		}
		if err := store.Close(); err != nil {
			return err
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"name":   name,
			"config": cfg.ConfigPath(),
			"store":  cfg.Store,
			"data":   location,
		})
	}

	format := outputFormat()
	output.Messagef(os.Stdout, format, "Initialized workspace %q in %s", name, absDir)
	output.Messagef(os.Stdout, format, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, format, "  Store:   %s (%s)", cfg.Store, location)
	output.Messagef(os.Stdout, format, "  Hint:    Create a goal with: goalplan goal create NAME")
	return nil
}
