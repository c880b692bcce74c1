package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
	"github.com/twiced-technology-gmbh/goalplan/internal/watcher"
)

var flagWatch bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule GOAL",
	Short: "Pack a goal's tasks into working days",
	Long: `Assigns the goal's tasks, in order, to consecutive time blocks of at most
--hours-per-day per day starting at --start-time on --start-date. A task that
does not fit the rest of a day is split and continues the next day.

Use --watch to re-render whenever the goal changes on disk.
Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

func init() {
	addScheduleFlags(scheduleCmd)
	scheduleCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "re-render on goal changes")
	rootCmd.AddCommand(scheduleCmd)
}

// addScheduleFlags registers the flags that override the workspace
// scheduling defaults.
func addScheduleFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("hours-per-day", 0, "daily capacity in hours (default from config)")
	cmd.Flags().String("start-date", "", "first day, YYYY-MM-DD (default today)")
	cmd.Flags().String("start-time", "", "start of the working day, HH:MM (default from config)")
	cmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "hours" {
			name = "hours-per-day"
		}
		return pflag.NormalizedName(name)
	})
}

// scheduleConfig merges schedule flags over the workspace defaults.
func scheduleConfig(cmd *cobra.Command, cfg *config.Config) (schedule.Config, error) {
	sc := schedule.Config{
		HoursPerDay: cfg.Schedule.HoursPerDay,
		StartTime:   cfg.StartClock(),
	}
	loc, err := cfg.Location()
	if err != nil {
		return sc, clierr.New(clierr.InvalidPlan, err.Error())
	}
	sc.Location = loc
	sc.StartDate = date.Today(loc)

	flags := cmd.Flags()
	if flags.Changed("hours-per-day") {
		sc.HoursPerDay, _ = flags.GetFloat64("hours-per-day")
	}
	if d, err := dateFlag(cmd, "start-date"); err != nil {
		return sc, err
	} else if d != nil {
		sc.StartDate = *d
	}
	if flags.Changed("start-time") {
		s, _ := flags.GetString("start-time")
		clock, err := date.ParseClock(s)
		if err != nil {
			return sc, clierr.Newf(clierr.InvalidTime, "invalid --start-time %q (expected HH:MM)", s).
				WithDetails(map[string]any{"input": s})
		}
		sc.StartTime = clock
	}
	return sc, sc.Validate()
}

func runSchedule(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := scheduleConfig(cmd, cfg)
	if err != nil {
		return err
	}

	if err := renderSchedule(cmd.Context(), cfg, goalID, sc); err != nil {
		return err
	}
	if !flagWatch {
		return nil
	}
	return watchSchedule(cmd.Context(), cfg, goalID, sc)
}

func renderSchedule(ctx context.Context, cfg *config.Config, goalID int, sc schedule.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer printWarnings(store)

	g, err := store.Get(ctx, goalID)
	if err != nil {
		return err
	}
	events, err := schedule.Schedule(order.Canonical(g.Tasks), sc)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, events)
	case output.FormatCompact:
		output.EventCompact(os.Stdout, events)
	default:
		output.EventTable(os.Stdout, events)
	}
	return nil
}

// storeWatcher watches whatever backs the workspace store.
func storeWatcher(cfg *config.Config, callback func()) (*watcher.Watcher, error) {
	if cfg.Store == config.StoreSQLite {
		return watcher.ForDatabase(cfg.DBFile(), callback)
	}
	return watcher.ForGoalsDir(cfg.GoalsPath(), callback)
}

func watchSchedule(ctx context.Context, cfg *config.Config, goalID int, sc schedule.Config) error {
	w, err := storeWatcher(cfg, func() {
		clearScreen()
		if renderErr := renderSchedule(ctx, cfg, goalID, sc); renderErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: rendering schedule: %v\n", renderErr)
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Fprintln(os.Stderr, "Watching for changes... (Ctrl+C to stop)")

	w.Run(ctx, func(watchErr error) {
		fmt.Fprintf(os.Stderr, "Warning: file watcher: %v\n", watchErr)
	})
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
