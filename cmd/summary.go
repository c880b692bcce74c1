package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
)

var summaryCmd = &cobra.Command{
	Use:     "summary GOAL",
	Aliases: []string{"overview"},
	Short:   "Show a goal's totals and schedule span",
	Long: `Displays task counts and hours per priority, the total estimate, and the
days the goal's schedule spans at the configured daily capacity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	addScheduleFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
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
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer printWarnings(store)

	g, err := store.Get(cmd.Context(), goalID)
	if err != nil {
		return err
	}
	tasks := order.Canonical(g.Tasks)
	events, err := schedule.Schedule(tasks, sc)
	if err != nil {
		return err
	}
	ov := plan.Summary(g.ID, g.Name, tasks, events, sc.HoursPerDay)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, ov)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, ov)
	default:
		output.OverviewTable(os.Stdout, ov)
	}
	return nil
}
