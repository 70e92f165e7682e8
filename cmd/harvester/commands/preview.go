package commands

import (
	"fmt"
	"os"

	"storefront-harvester/internal/storefront"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var previewLimit *int

func init() {
	previewLimit = previewCmd.Flags().Int("limit", 0, "The max amount of products, clamped to what the storefront allows.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:       "preview <storefront> [--limit <n>]",
	Short:     "Harvests a storefront and prints the products instead of writing them.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: storefront.Names(),
	Run: func(cmd *cobra.Command, args []string) {
		profile := lookupProfile(args[0])

		snap, err := newPipeline(profile).Run(cmd.Context(), pipelineOptions(cmd, profile, *previewLimit))
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(fmt.Sprintf("%s @ %s", profile.Name, snap.UpdatedAt))
		t.AppendHeader(table.Row{"#", "Title", "Price", "Source", "URL", "Image"})
		for i, item := range snap.Items {
			t.AppendRow(table.Row{i + 1, item.Title, item.Price, item.Source, item.URL, item.Image})
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("active: %v", snap.Active), "", "", fmt.Sprintf("%d items", len(snap.Items)), ""})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
