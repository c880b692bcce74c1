package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var taskMoveCmd = &cobra.Command{
	Use:   "move GOAL ID POSITION",
	Short: "Move a task to a new position",
	Long: `Moves a task to POSITION (1 is first) and renumbers the list.
Use --up or --down instead of POSITION to move by one step.`,
	Args: cobra.RangeArgs(2, 3), //nolint:mnd // goal, id and optional position
	RunE: runTaskMove,
}

var taskRenumberCmd = &cobra.Command{
	Use:   "renumber GOAL",
	Short: "Rewrite task orders as 1..n",
	Long:  `Sorts tasks by their stored order and rewrites it as a dense 1..n sequence.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRenumber,
}

func init() {
	taskMoveCmd.Flags().Bool("up", false, "move one position towards the top")
	taskMoveCmd.Flags().Bool("down", false, "move one position towards the bottom")
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskRenumberCmd)
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	id, err := parseTaskID(args[1])
	if err != nil {
		return err
	}
	up, _ := cmd.Flags().GetBool("up")
	down, _ := cmd.Flags().GetBool("down")

	var position int
	switch {
	case len(args) == 3 && (up || down), up && down:
		return clierr.New(clierr.InvalidInput, "provide POSITION, --up or --down, not several")
	case len(args) == 3:
		position, err = strconv.Atoi(args[2])
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid position %q", args[2]).
				WithDetails(map[string]any{"input": args[2]})
		}
	case !up && !down:
		return clierr.New(clierr.InvalidInput, "provide POSITION, --up or --down")
	}

	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		var from, to int
		saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
			from = order.IndexOf(tasks, id)
			if from < 0 {
				return nil, task.NotFound(goalID, id)
			}
			switch {
			case up:
				to = from - 1
			case down:
				to = from + 1
			default:
				to = position - 1
			}
			return order.Reorder(tasks, from, to)
		})
		if err != nil {
			return err
		}
		moved := saved[to]
		logActivity(cfg, history.ActionTaskMove, goalID, id,
			strconv.Itoa(from+1)+" -> "+strconv.Itoa(to+1))

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, map[string]interface{}{
				"id":      id,
				"from":    from + 1,
				"to":      to + 1,
				"changed": from != to,
				"tasks":   saved,
			})
		case output.FormatCompact:
			output.TaskCompact(os.Stdout, saved)
		default:
			output.Messagef(os.Stdout, outputFormat(), "Moved task #%d %q: %d -> %d", id, moved.Name, from+1, to+1)
		}
		return nil
	})
}

func runTaskRenumber(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	return withLockedStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		saved, err := updateTasks(ctx, store, goalID, func(tasks []task.Task) ([]task.Task, error) {
			return order.Renumber(tasks), nil
		})
		if err != nil {
			return err
		}
		logActivity(cfg, history.ActionRenumber, goalID, 0, strconv.Itoa(len(saved))+" tasks")
		renderTasks(saved)
		return nil
	})
}
