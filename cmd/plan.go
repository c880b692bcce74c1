package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twiced-technology-gmbh/goalplan/internal/config"
	"github.com/twiced-technology-gmbh/goalplan/internal/tui"
)

var planCmd = &cobra.Command{
	Use:     "plan GOAL",
	Aliases: []string{"edit", "tui"},
	Short:   "Edit a goal's task list interactively",
	Long: `Opens a terminal editor over the goal's tasks: reorder with K/J, delete with d,
cycle sort views with s, toggle the schedule pane with tab, and save with w.
The editor reloads when the goal changes on disk and has no unsaved edits.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	addScheduleFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	goalID, err := parseGoalID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := scheduleConfig(cmd, cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	model, err := tui.NewEditor(tui.Options{
		Store:      store,
		GoalID:     goalID,
		Schedule:   sc,
		HistoryDir: cfg.Dir(),
	})
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go startTUIWatcher(ctx, cfg, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, cfg *config.Config, p *tea.Program) {
	w, err := storeWatcher(cfg, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		zap.L().Debug("live reload disabled", zap.Error(err))
		return // non-fatal: the editor works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
