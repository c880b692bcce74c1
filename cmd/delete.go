package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/plan"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var taskDeleteCmd = &cobra.Command{
	Use:     "delete GOAL ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Removes a task from the goal and renumbers the remaining tasks.
Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(2), //nolint:mnd // goal and ids
	RunE: runTaskDelete,
}

func init() {
	taskDeleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	taskCmd.AddCommand(taskDeleteCmd)
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	ids, err := plan.ParseIDs(args[1])
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	if len(ids) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		if len(ids) == 1 {
			return deleteSingleTask(ctx, cfg, store, goalID, ids[0], yes)
		}
		return runBatch(ids, func(id int) error {
			_, err := executeDelete(ctx, cfg, store, goalID, id)
			return err
		})
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
func deleteSingleTask(ctx context.Context, cfg *config.Config, store goal.Store, goalID, id int, yes bool) error {
	g, err := store.Get(ctx, goalID)
	if err != nil {
		return err
	}
	i := order.IndexOf(g.Tasks, id)
	if i < 0 {
		return task.NotFound(goalID, id)
	}
	name := g.Tasks[i].Name

	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete task #%d %q? [y/N] ", id, name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if _, err := executeDelete(ctx, cfg, store, goalID, id); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"status":  "deleted",
			"goal_id": goalID,
			"id":      id,
			"name":    name,
		})
	}
	output.Messagef(os.Stdout, outputFormat(), "Deleted task #%d: %s", id, name)
	return nil
}

// executeDelete removes one task, saves the renumbered list and logs it.
func executeDelete(ctx context.Context, cfg *config.Config, store goal.Store, goalID, id int) ([]task.Task, error) {
	var name string
	saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
		i := order.IndexOf(tasks, id)
		if i < 0 {
			return nil, task.NotFound(goalID, id)
		}
		name = tasks[i].Name
		return order.RemoveAt(tasks, i)
	})
	if err != nil {
		return nil, err
	}
	logActivity(cfg, history.ActionTaskDelete, goalID, id, name)
	return saved, nil
}
