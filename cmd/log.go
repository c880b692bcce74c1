package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
)

var logCmd = &cobra.Command{
	Use:     "log [GOAL]",
	Aliases: []string{"history"},
	Short:   "Show the workspace activity log",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "show the last N entries (0 for all)") //nolint:mnd // default page
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	var goalID int
	if len(args) == 1 {
		id, err := parseGoalID(args[0])
		if err != nil {
			return err
		}
		goalID = id
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	entries, err := history.Read(cfg.Dir(), goalID, limit)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []history.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.HistoryCompact(os.Stdout, entries)
	default:
		output.HistoryTable(os.Stdout, entries)
	}
	return nil
}
