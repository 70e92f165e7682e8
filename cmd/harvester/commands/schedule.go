package commands

import (
	"context"
	"log/slog"

	"storefront-harvester/internal/components/chrono"
	"storefront-harvester/internal/history"
	"storefront-harvester/internal/storefront"
	libtelemetry "storefront-harvester/lib/telemetry"
	"storefront-harvester/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	scheduleSpec    *string
	scheduleHistory *string
	scheduleNow     *bool
)

func init() {
	scheduleSpec = scheduleCmd.Flags().String("spec", "", "The cron spec to harvest on, defaults to HARVEST_SCHEDULE or @every 6h.")
	scheduleHistory = scheduleCmd.Flags().String("history", "", "A sqlite db to archive runs in, defaults to HARVEST_HISTORY_DB.")
	scheduleNow = scheduleCmd.Flags().Bool("now", true, "Harvest every storefront once right away.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--spec <cron>] [--history <db>]",
	Short: "Harvests every storefront on a schedule until interrupted.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		spec := *scheduleSpec
		if spec == "" {
			spec = cfg.Schedule
		}
		historyPath := *scheduleHistory
		if historyPath == "" {
			historyPath = cfg.HistoryDB
		}
		store, closeHistory := openHistory(historyPath)
		defer closeHistory()

		libtelemetry.InstrumentPerfStats(ctx)

		cron := chrono.NewStandardCron(tel)
		for _, name := range storefront.Names() {
			run, err := cron.Cron(spec, harvestJob(ctx, name, store))
			if err != nil {
				serviceutil.Fatal("invalid schedule", err)
			}
			if *scheduleNow {
				run()
			}
		}
		slog.Info("harvesting on schedule", "spec", spec, "storefronts", storefront.Names())

		<-ctx.Done()
		slog.Info("waiting for running harvests to finish")
		<-cron.Stop()
	},
}

// harvestJob ignores OUT_FILE, every storefront writes to its own configured file.
func harvestJob(ctx context.Context, name string, store *history.Store) func() {
	profile := lookupProfile(name)
	return func() {
		if ctx.Err() != nil {
			return
		}
		p := newPipeline(profile)
		_, err := harvest(ctx, p, cfg.PipelineOptions(profile), cfg.Storefront(name).OutFile, store)
		if err != nil {
			tel.ReportBroken("schedule.harvest", err, name)
		}
	}
}
