package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
)

var goalShowCmd = &cobra.Command{
	Use:   "show GOAL",
	Short: "Show goal details",
	Long:  `Displays a goal with its rendered description and its task list in stored order.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalShow,
}

func init() {
	goalCmd.AddCommand(goalShowCmd)
}

func runGoalShow(cmd *cobra.Command, args []string) error {
	id, err := parseGoalID(args[0])
	if err != nil {
		return err
	}

	return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store goal.Store) error {
		g, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		g.Tasks = order.Canonical(g.Tasks)

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, g)
		case output.FormatCompact:
			output.GoalDetailCompact(os.Stdout, g)
		default:
			output.GoalDetail(os.Stdout, g)
		}
		return nil
	})
}
