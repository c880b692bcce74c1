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

var taskEditCmd = &cobra.Command{
	Use:   "edit GOAL ID",
	Short: "Edit a task",
	Long:  `Modifies fields of an existing task. Only specified fields are changed; the task keeps its position.`,
	Args:  cobra.ExactArgs(2), //nolint:mnd // goal and task
	RunE:  runTaskEdit,
}

func init() {
	taskEditCmd.Flags().String("name", "", "new name")
	taskEditCmd.Flags().Float64("hours", 0, "new estimated duration in hours")
	taskEditCmd.Flags().String("priority", "", "new priority")
	taskEditCmd.Flags().String("description", "", "new description (replaces it)")
	taskEditCmd.Flags().SetNormalizeFunc(taskFlagAliases)
	taskCmd.AddCommand(taskEditCmd)
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	id, err := parseTaskID(args[1])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("hours") && !flags.Changed("priority") && !flags.Changed("description") {
		return clierr.New(clierr.NoChanges, "nothing to change (use --name, --hours, --priority or --description)")
	}

	apply := func(t *task.Task) error {
		if flags.Changed("name") {
			name, _ := flags.GetString("name")
			name = strings.TrimSpace(name)
			if err := task.ValidateName(name); err != nil {
				return err
			}
			t.Name = name
		}
		if flags.Changed("hours") {
			hours, _ := flags.GetFloat64("hours")
			if err := task.CheckHours(t.Name, hours); err != nil {
				return err
			}
			t.EstimatedHours = hours
		}
		if flags.Changed("priority") {
			input, _ := flags.GetString("priority")
			p, err := task.ValidatePriority(input)
			if err != nil {
				return err
			}
			t.Priority = p
		}
		if flags.Changed("description") {
			d, _ := flags.GetString("description")
			t.Description = strings.TrimSpace(d)
		}
		return nil
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
			if order.IndexOf(tasks, id) < 0 {
				return nil, task.NotFound(goalID, id)
			}
			return order.Update(tasks, id, apply)
		})
		if err != nil {
			return err
		}
		edited := saved[order.IndexOf(saved, id)]
		logActivity(cfg, history.ActionTaskEdit, goalID, id, edited.Name)

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, edited)
		}
		output.Messagef(os.Stdout, outputFormat(), "Updated task #%d: %s", edited.ID, edited.Name)
		return nil
	})
}
