package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var taskListCmd = &cobra.Command{
	Use:     "list GOAL",
	Aliases: []string{"ls"},
	Short:   "List a goal's tasks",
	Long: `Lists tasks in stored order. Filters and --sort change only what is shown;
use 'task sort --apply' to persist a sorted order.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskList,
}

func init() {
	taskListCmd.Flags().StringSlice("priority", nil, "filter by priority (comma-separated)")
	taskListCmd.Flags().String("search", "", "search name and description")
	taskListCmd.Flags().Float64("min-hours", 0, "only tasks estimated at least this long")
	taskListCmd.Flags().Float64("max-hours", 0, "only tasks estimated at most this long")
	taskListCmd.Flags().String("sort", "", "sort view by order, id, name, estimated_time, or priority")
	taskListCmd.Flags().Bool("desc", false, "sort descending")
	taskListCmd.Flags().Bool("payload", false, "print the bulk save body instead of the list (JSON)")
	taskCmd.AddCommand(taskListCmd)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	opts, err := filterOptions(cmd)
	if err != nil {
		return err
	}
	sortKey, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	payload, _ := cmd.Flags().GetBool("payload")

	return withStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store goal.Store) error {
		g, err := store.Get(ctx, goalID)
		if err != nil {
			return err
		}
		tasks := order.Canonical(g.Tasks)
		if payload {
			return output.JSON(os.Stdout, task.SavePayload(tasks))
		}

		tasks = plan.Filter(tasks, opts)
		if sortKey != "" {
			if tasks, err = order.SortBy(tasks, sortKey, direction(desc)); err != nil {
				return err
			}
		}
		renderTasks(tasks)
		return nil
	})
}

func filterOptions(cmd *cobra.Command) (plan.FilterOptions, error) {
	var opts plan.FilterOptions
	names, _ := cmd.Flags().GetStringSlice("priority")
	for _, n := range names {
		p, err := task.ValidatePriority(n)
		if err != nil {
			return opts, err
		}
		opts.Priorities = append(opts.Priorities, p)
	}
	opts.Search, _ = cmd.Flags().GetString("search")
	opts.MinHours, _ = cmd.Flags().GetFloat64("min-hours")
	opts.MaxHours, _ = cmd.Flags().GetFloat64("max-hours")
	return opts, nil
}

func direction(desc bool) string {
	if desc {
		return order.Desc
	}
	return order.Asc
}

// renderTasks prints tasks in the detected output format.
func renderTasks(tasks []task.Task) {
	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []task.Task{}
		}
		_ = output.JSON(os.Stdout, tasks)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks)
	default:
		output.TaskTable(os.Stdout, tasks)
	}
}
