package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Edit a goal's ordered task list",
}

func init() {
	rootCmd.AddCommand(taskCmd)
}

// taskFlagAliases maps alternate flag spellings onto the canonical task flags.
func taskFlagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "duration", "time", "estimated-time":
		name = "hours"
	case "body", "desc":
		name = "description"
	case "title":
		name = "name"
	}
	return pflag.NormalizedName(name)
}
