package commands

import (
	"storefront-harvester/internal/storefront"
	"storefront-harvester/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	runOut     *string
	runLimit   *int
	runHistory *string
)

func init() {
	runOut = runCmd.Flags().String("out", "", "The file to write the snapshot to, defaults to OUT_FILE or the storefront's default.")
	runLimit = runCmd.Flags().Int("limit", 0, "The max amount of products, clamped to what the storefront allows.")
	runHistory = runCmd.Flags().String("history", "", "A sqlite db to archive the run in, defaults to HARVEST_HISTORY_DB.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:       "run <storefront> [--out <path>] [--limit <n>] [--history <db>]",
	Short:     "Harvests a storefront once and writes its snapshot.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: storefront.Names(),
	Run: func(cmd *cobra.Command, args []string) {
		profile := lookupProfile(args[0])

		outFile := *runOut
		if outFile == "" {
			outFile = cfg.OutFileFor(profile.Name)
		}
		historyPath := *runHistory
		if historyPath == "" {
			historyPath = cfg.HistoryDB
		}
		store, closeHistory := openHistory(historyPath)
		defer closeHistory()

		_, err := harvest(
			cmd.Context(),
			newPipeline(profile),
			pipelineOptions(cmd, profile, *runLimit),
			outFile,
			store,
		)
		if err != nil {
			serviceutil.Fatal("failed to write snapshot", err)
		}
	},
}
