package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/goalplan/internal/calendar"
	"github.com/twiced-technology-gmbh/goalplan/internal/history"
	"github.com/twiced-technology-gmbh/goalplan/internal/order"
	"github.com/twiced-technology-gmbh/goalplan/internal/output"
	"github.com/twiced-technology-gmbh/goalplan/internal/schedule"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Publish schedules to Google Calendar",
}

var calendarAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize goalplan to write calendar events",
	Long: `Runs the Google OAuth consent flow in your browser and caches the token
in the workspace. Requires an OAuth client secret file (calendar.credentials_file).`,
	Args: cobra.NoArgs,
	RunE: runCalendarAuth,
}

var calendarPublishCmd = &cobra.Command{
	Use:   "publish GOAL",
	Short: "Replace a goal's calendar events with its current schedule",
	Long: `Schedules the goal and writes one event per block to the configured calendar.
Events published earlier for the same goal are deleted first; other events
on the calendar are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalendarPublish,
}

func init() {
	calendarPublishCmd.Flags().String("calendar", "", "calendar name or ID (default from config)")
	calendarPublishCmd.Flags().Bool("dry-run", false, "show the events without publishing")
	addScheduleFlags(calendarPublishCmd)
	calendarCmd.AddCommand(calendarAuthCmd)
	calendarCmd.AddCommand(calendarPublishCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	oauthCfg, err := calendar.LoadConfig(cfg.CredentialsPath())
	if err != nil {
		return err
	}
	tok, err := calendar.Authorize(cmd.Context(), oauthCfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := calendar.SaveToken(cfg.TokenPath(), tok); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"status": "authorized", "token_file": cfg.TokenPath()})
	}
	output.Messagef(os.Stdout, outputFormat(), "Authorized. Token saved to %s", cfg.TokenPath())
	return nil
}

func runCalendarPublish(cmd *cobra.Command, args []string) error {
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
	calName, _ := cmd.Flags().GetString("calendar")
	if calName == "" {
		calName = cfg.Calendar.Name
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	defer printWarnings(store)

	ctx := cmd.Context()
	g, err := store.Get(ctx, goalID)
	if err != nil {
		return err
	}
	events, err := schedule.Schedule(order.Canonical(g.Tasks), sc)
	if err != nil {
		return err
	}

	if dryRun {
		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, map[string]any{"calendar": calName, "dry_run": true, "events": events})
		case output.FormatCompact:
			output.EventCompact(os.Stdout, events)
		default:
			output.EventTable(os.Stdout, events)
			output.Messagef(os.Stdout, outputFormat(), "\nDry run: %d events would be published to %q.", len(events), calName)
		}
		return nil
	}

	srv, err := calendar.NewService(ctx, cfg.CredentialsPath(), cfg.TokenPath())
	if err != nil {
		return err
	}
	calID, err := calendar.FindCalendarID(ctx, srv, calName)
	if err != nil {
		return err
	}
	res, err := calendar.NewPublisher(srv, calID).Publish(ctx, goalID, events)
	if err != nil {
		return err
	}
	logActivity(cfg, history.ActionPublish, goalID, 0,
		fmt.Sprintf("%d events to %s (%d replaced)", res.Created, calName, res.Deleted))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, res)
	}
	output.Messagef(os.Stdout, outputFormat(), "Published %d events to %q (%d previous events removed)", res.Created, calName, res.Deleted)
	return nil
}
