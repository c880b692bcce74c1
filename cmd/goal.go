package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/date"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"goals"},
	Short:   "Create and inspect goals",
}

var goalCreateCmd = &cobra.Command{
	Use:     "create [NAME]",
	Aliases: []string{"add", "new"},
	Short:   "Create a new goal",
	Long: `Creates a goal with an empty task list.

Name can be provided as a positional argument or via --name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGoalCreate,
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals",
	Args:    cobra.NoArgs,
	RunE:    runGoalList,
}

func init() {
	goalCreateCmd.Flags().String("name", "", "goal name (alternative to positional argument)")
	goalCreateCmd.Flags().String("description", "", "goal description (markdown)")
	goalCreateCmd.Flags().String("from", "", "period start (YYYY-MM-DD)")
	goalCreateCmd.Flags().String("until", "", "period end (YYYY-MM-DD)")

	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalListCmd)
	rootCmd.AddCommand(goalCmd)
}

func runGoalCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	if len(args) > 0 {
		if name != "" {
			return clierr.New(clierr.InvalidInput, "provide the name as an argument or --name, not both")
		}
		name = args[0]
	}
	description, _ := cmd.Flags().GetString("description")

	g := &goal.Goal{Name: strings.TrimSpace(name), Description: description}
	var err error
	if g.PeriodStart, err = dateFlag(cmd, "from"); err != nil {
		return err
	}
	if g.PeriodEnd, err = dateFlag(cmd, "until"); err != nil {
		return err
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		if err := store.Create(ctx, g); err != nil {
			return err
		}
		if g.ID >= cfg.NextGoalID {
			cfg.NextGoalID = g.ID + 1
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		logActivity(cfg, history.ActionGoalCreate, g.ID, 0, g.Name)

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, g)
		}
		output.Messagef(os.Stdout, outputFormat(), "Created goal #%d: %s", g.ID, g.Name)
		return nil
	})
}

func runGoalList(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store goal.Store) error {
		goals, err := store.List(ctx)
		if err != nil {
			return err
		}
		switch outputFormat() {
		case output.FormatJSON:
			if goals == nil {
				goals = []*goal.Goal{}
			}
			return output.JSON(os.Stdout, goals)
		case output.FormatCompact:
			output.GoalCompact(os.Stdout, goals)
		default:
			output.GoalTable(os.Stdout, goals)
		}
		return nil
	})
}

// dateFlag parses an optional YYYY-MM-DD flag.
func dateFlag(cmd *cobra.Command, name string) (*date.Date, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return nil, nil
	}
	d, err := date.Parse(v)
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidDate, "invalid --%s date %q (expected YYYY-MM-DD)", name, v).
			WithDetails(map[string]any{"flag": name, "input": v})
	}
	return &d, nil
}
