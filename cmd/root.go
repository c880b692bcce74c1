// Package cmd implements the goalplan CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/db"
	"github.com/twiced-technology-gmbh/goalplan/internal/filelock"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/logging"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON     bool
	flagTable    bool
	flagCompact  bool
	flagDir      string
	flagNoColor  bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "goalplan",
	Short: "Plan goals as ordered task lists and schedule them into your calendar",
	Long: `goalplan keeps goals as ordered task lists, merges AI-proposed task lists
into them, and packs the tasks into working days you can publish to Google Calendar.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagNoColor || !output.ColorEnabled(os.Stdout) {
			output.DisableColor()
		}
		level := flagLogLevel
		if level == "" {
			level = config.DefaultLogLevel
		}
		if _, err := logging.Build(level, config.DefaultLogEncoding); err != nil {
			return clierr.New(clierr.InvalidInput, err.Error()).
				WithDetails(map[string]any{"log_level": flagLogLevel, "allowed": config.LogLevels})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to the goalplan workspace")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	_, err := rootCmd.ExecuteContextC(ctx)
	stop()
	_ = zap.L().Sync()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the workspace directory from --dir or by walking up
// from the working directory.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the workspace config and applies its log settings
// unless --log-level overrides them.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, clierr.New(clierr.WorkspaceNotFound, err.Error()).
				WithDetails(map[string]any{"dir": dir})
		}
		return nil, err
	}
	if flagLogLevel == "" {
		if _, err := logging.Build(cfg.Log.Level, cfg.Log.Encoding); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openStore returns the goal store the workspace is configured for.
func openStore(cfg *config.Config) (goal.Store, error) {
	if cfg.Store == config.StoreSQLite {
		zap.L().Debug("opening sqlite store", zap.String("path", cfg.DBFile()))
		s, err := db.OpenStore(cfg.DBFile())
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	zap.L().Debug("opening file store", zap.String("path", cfg.GoalsPath()))
	s, err := goal.NewFileStore(cfg.GoalsPath())
	if err != nil {
		return nil, err
	}
	return s, nil
}

// workspaceFunc is the body of a command that needs a loaded workspace.
type workspaceFunc func(ctx context.Context, cfg *config.Config, store goal.Store) error

// withStore loads the workspace, opens its store and runs fn.
func withStore(ctx context.Context, fn workspaceFunc) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	err = fn(ctx, cfg, store)
	printWarnings(store)
	return err
}

// withLockedStore is withStore holding the workspace lock, so concurrent
// commands cannot interleave their read-modify-write of a goal.
func withLockedStore(ctx context.Context, fn workspaceFunc) error {
	dir, err := resolveDir()
	if err != nil {
		return err
	}
	return filelock.With(dir, func() error {
		return withStore(ctx, fn)
	})
}

// updateTasks applies fn to the goal's canonical task list and saves the result.
func updateTasks(ctx context.Context, store goal.Store, goalID int, fn func([]task.Task) ([]task.Task, error)) ([]task.Task, error) {
	g, err := store.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	next, err := fn(order.Canonical(g.Tasks))
	if err != nil {
		return nil, err
	}
	return store.SaveTasks(ctx, goalID, next)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarnings writes goal file read warnings to stderr.
func printWarnings(store goal.Store) {
	fs, ok := store.(*goal.FileStore)
	if !ok {
		return
	}
	for _, w := range fs.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping malformed file %s: %v\n", w.File, w.Err)
	}
}

// logActivity appends an entry to the activity log. Errors are silently
// discarded because logging should never fail a command.
func logActivity(cfg *config.Config, action string, goalID, taskID int, detail string) {
	history.Record(cfg.Dir(), action, goalID, taskID, detail)
	zap.L().Info(action, zap.Int("goal_id", goalID), zap.Int("task_id", taskID), zap.String("detail", detail))
}

// parseGoalID parses a positive goal ID argument.
func parseGoalID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, clierr.Newf(clierr.InvalidGoalID, "invalid goal ID %q", arg).
			WithDetails(map[string]any{"input": arg})
	}
	return id, nil
}

// parseTaskID parses a positive task ID argument.
func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, task.ValidateTaskID(arg)
	}
	return id, nil
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []int, fn func(int) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		err := fn(id)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{ID: id, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, outputFormat(), "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
