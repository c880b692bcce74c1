package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/goal"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/reconcile"
	"github.com/twiced-technology-gmbh/goalplan/internal/task"
)

var mergeCmd = &cobra.Command{
	Use:   "merge GOAL [FILE|-]",
	Short: "Merge a proposed task list into a goal",
	Long: `Reads a proposed task list (a JSON array, or an object with a "tasks" array,
optionally wrapped in Markdown code fences) from FILE or stdin and merges it
into the goal. Proposals matching an existing task by id or name update it;
the rest are appended. Invalid records are reported and skipped.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // goal and optional file
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().Bool("dry-run", false, "show the merged list without saving")
	rootCmd.AddCommand(mergeCmd)
}

// mergeOutput is the JSON shape of a merge.
type mergeOutput struct {
	GoalID  int                    `json:"goal_id"`
	DryRun  bool                   `json:"dry_run"`
	Updated int                    `json:"updated"`
	Added   int                    `json:"added"`
	Tasks   []task.Task            `json:"tasks"`
	Payload task.SaveRequest       `json:"payload"`
	Dropped []output.RejectionJSON `json:"dropped"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	src := "-"
	if len(args) > 1 {
		src = args[1]
	}
	data, err := readInput(cmd.InOrStdin(), src)
	if err != nil {
		return err
	}
	raws, err := task.ParseRawList(data, task.SourceProposed)
	if err != nil {
		return clierr.New(clierr.InvalidInput, err.Error()).
			WithDetails(map[string]any{"source": src})
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	run := withLockedStore
	if dryRun {
		run = withStore
	}
	return run(cmd.Context(), func(ctx context.Context, cfg *config.Config, store goal.Store) error {
		g, err := store.Get(ctx, goalID)
		if err != nil {
			return err
		}
		res := reconcile.MergeInto(goalID, order.Canonical(g.Tasks), raws)

		if !dryRun {
			saved, err := store.SaveTasks(ctx, goalID, res.Tasks)
			if err != nil {
				return err
			}
			res.Tasks = saved
			logActivity(cfg, history.ActionMerge, goalID, 0,
				fmt.Sprintf("%d updated, %d added, %d dropped", res.Updated, res.Added, len(res.Dropped)))
		}

		switch outputFormat() {
		case output.FormatJSON:
			tasks := res.Tasks
			if tasks == nil {
				tasks = []task.Task{}
			}
			return output.JSON(os.Stdout, mergeOutput{
				GoalID:  goalID,
				DryRun:  dryRun,
				Updated: res.Updated,
				Added:   res.Added,
				Tasks:   tasks,
				Payload: task.SavePayload(tasks),
				Dropped: output.Rejections(res.Dropped),
			})
		case output.FormatCompact:
			for _, r := range res.Dropped {
				fmt.Fprintf(os.Stderr, "Warning: dropped record %d: %s\n", r.Index, r.Reason())
			}
			output.TaskCompact(os.Stdout, res.Tasks)
		default:
			output.MergeTable(os.Stdout, res)
			if dryRun {
				output.Messagef(os.Stdout, outputFormat(), "\nDry run: nothing saved.")
			}
		}
		return nil
	})
}

// readInput reads a whole file, or r when src is "-".
func readInput(r io.Reader, src string) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(src) //nolint:gosec // user-supplied input path
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidInput, "reading %s: %v", src, err).
			WithDetails(map[string]any{"source": src})
	}
	return data, nil
}
