package commands

import (
	"os"

	"storefront-harvester/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const defaultHistoryPath = "data/history.db"

var (
	historyDb         *string
	historyStorefront *string
	historyCount      *int
)

func init() {
	historyDb = historyCmd.Flags().String("db", "", "The sqlite db runs were archived in, defaults to HARVEST_HISTORY_DB or "+defaultHistoryPath+".")
	historyStorefront = historyCmd.Flags().String("storefront", "", "Only list runs of this storefront.")
	historyCount = historyCmd.Flags().IntP("n", "n", 10, "The amount of runs to list.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--db <path>] [--storefront <name>] [-n <count>]",
	Short: "Lists recently archived runs.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := *historyDb
		if path == "" {
			path = cfg.HistoryDB
		}
		if path == "" {
			path = defaultHistoryPath
		}
		if *historyStorefront != "" {
			lookupProfile(*historyStorefront)
		}

		store, closeHistory := openHistory(path)
		defer closeHistory()

		entries, err := store.Recent(cmd.Context(), *historyStorefront, *historyCount)
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Storefront", "Updated", "Active", "Items", "Error"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.ID,
				e.Storefront,
				e.Snapshot.UpdatedAt,
				e.Snapshot.Active,
				len(e.Snapshot.Items),
				e.Error,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
