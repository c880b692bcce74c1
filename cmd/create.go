package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var taskAddCmd = &cobra.Command{
	Use:     "add GOAL [NAME]",
	Aliases: []string{"create"},
	Short:   "Append a task to a goal",
	Long: `Appends a task at the end of the goal's list.

Name can be provided as a positional argument or via --name.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // goal and optional name
	RunE: runTaskAdd,
}

func init() {
	taskAddCmd.Flags().String("name", "", "task name (alternative to positional argument)")
	taskAddCmd.Flags().Float64("hours", 0, "estimated duration in hours")
	taskAddCmd.Flags().String("priority", task.DefaultPriority.String(), "priority: low, medium, high (or 1-3)")
	taskAddCmd.Flags().String("description", "", "task description")
	taskAddCmd.Flags().SetNormalizeFunc(taskFlagAliases)
	taskCmd.AddCommand(taskAddCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if len(args) > 1 {
		if name != "" {
			return clierr.New(clierr.InvalidInput, "provide the name as an argument or --name, not both")
		}
		name = args[1]
	}
	prioInput, _ := cmd.Flags().GetString("priority")
	prio, err := task.ValidatePriority(prioInput)
	if err != nil {
		return err
	}
	hours, _ := cmd.Flags().GetFloat64("hours")
	description, _ := cmd.Flags().GetString("description")

	t, err := task.Normalize(task.Raw{Source: task.SourcePersisted, Fields: map[string]any{
		"name":           name,
		"estimated_time": hours,
		"priority":       int(prio),
		"description":    strings.TrimSpace(description),
	}})
	if err != nil {
		return err
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
			return order.Append(tasks, t), nil
		})
		if err != nil {
			return err
		}
		added := saved[len(saved)-1]
		logActivity(cfg, history.ActionTaskAdd, goalID, added.ID, added.Name)

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, added)
		}
		output.Messagef(os.Stdout, outputFormat(), "Added task #%d at position %d: %s", added.ID, added.Order, added.Name)
		return nil
	})
}
