package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var taskSortCmd = &cobra.Command{
	Use:   "sort GOAL KEY",
	Short: "Show or persist tasks sorted by a field",
	Long: `Sorts tasks by KEY (order, id, name, estimated_time, priority).
Without --apply the stored order is untouched; with --apply the sorted
sequence becomes the new order.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // goal and key
	RunE: runTaskSort,
}

func init() {
	taskSortCmd.Flags().Bool("desc", false, "sort descending")
	taskSortCmd.Flags().Bool("apply", false, "save the sorted sequence as the new order")
	taskCmd.AddCommand(taskSortCmd)
}

func runTaskSort(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	key := args[1]
	if _, err := order.SortBy(nil, key, order.Asc); err != nil {
		return err
	}
	desc, _ := cmd.Flags().GetBool("desc")
	apply, _ := cmd.Flags().GetBool("apply")

	if !apply {
		return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store goal.Store) error {
			g, err := store.Get(ctx, goalID)
			if err != nil {
				return err
			}
			sorted, err := order.SortBy(order.Canonical(g.Tasks), key, direction(desc))
			if err != nil {
				return err
			}
			renderTasks(sorted)
			return nil
		})
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
			sorted, err := order.SortBy(tasks, key, direction(desc))
			if err != nil {
				return nil, err
			}
			return order.Renumber(sorted), nil
		})
		if err != nil {
			return err
		}
		canonical, _ := order.NormalizeKey(key)
		logActivity(cfg, history.ActionRenumber, goalID, 0, "sorted by "+canonical+" "+direction(desc))
		if outputFormat() != output.FormatJSON {
			output.Messagef(os.Stdout, outputFormat(), "Saved order sorted by %s %s", canonical, direction(desc))
		}
		renderTasks(saved)
		return nil
	})
}
