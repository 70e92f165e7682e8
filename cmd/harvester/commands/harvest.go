package commands

import (
	"context"
	"log/slog"

	"storefront-harvester/internal/browser"
	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/components/chrono"
	"storefront-harvester/internal/db"
	"storefront-harvester/internal/fetch"
	"storefront-harvester/internal/history"
	"storefront-harvester/internal/pipeline"
	"storefront-harvester/internal/snapshot"
	"storefront-harvester/internal/storefront"
	"storefront-harvester/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func lookupProfile(name string) storefront.Profile {
	profile, ok := storefront.Lookup(name)
	if !ok {
		serviceutil.Fatal("unknown storefront", errUnknownStorefront(name))
	}
	return profile
}

func newPipeline(profile storefront.Profile) pipeline.Pipeline {
	var factory pipeline.SourceFactory
	switch profile.Mode {
	case storefront.ModeBrowser:
		factory = browser.NewLauncher(cfg.BrowserOptions(), tel)
	default:
		factory = fetch.NewFactory(cfg.FetchOptions(), tel)
	}
	return pipeline.NewPipeline(profile, factory, chrono.NewStandardTime(), tel)
}

// pipelineOptions applies the --limit flag (when given) on top of the config.
func pipelineOptions(cmd *cobra.Command, profile storefront.Profile, limit int) pipeline.Options {
	opts := cfg.PipelineOptions(profile)
	if cmd.Flags().Changed("limit") {
		opts.Limit = limit
	}
	return opts
}

// openHistory opens the run archive, an empty path disables it and returns a nil store.
func openHistory(path string) (*history.Store, func()) {
	if path == "" {
		return nil, func() {}
	}
	database, err := db.Open(path)
	if err != nil {
		serviceutil.Fatal("failed to open history db", err)
	}
	store := history.NewStore(database, cfg.HistoryKeep, tel)
	return &store, func() { database.Close() }
}

// harvest runs the pipeline once and writes its snapshot, a degraded run is still written.
// Only a failed write is returned as an error.
func harvest(ctx context.Context, p pipeline.Pipeline, opts pipeline.Options, outFile string, store *history.Store) (catalog.Snapshot, error) {
	name := p.Profile().Name

	snap, runErr := p.Run(ctx, opts)
	if runErr != nil {
		slog.Warn("harvest degraded", "storefront", name, "err", runErr)
	}

	err := snapshot.WriteFile(outFile, snap)
	if err != nil {
		return snap, err
	}
	slog.Info(
		"wrote snapshot",
		"storefront", name,
		"items", len(snap.Items),
		"active", snap.Active,
		"out", outFile,
	)

	if store != nil {
		err := store.Record(ctx, name, snap, runErr)
		if err != nil {
			slog.Warn("failed to record run", "storefront", name, "err", err)
		}
	}
	return snap, nil
}
