package commands

import (
	"context"
	"fmt"
	"os"

	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/config"
	libtelemetry "storefront-harvester/lib/telemetry"
	"storefront-harvester/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	cfg config.Config
	tel telemetry.API = telemetry.SlogAPI{}
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "harvester snapshots storefront product catalogs into json files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(*verbose)

		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The json5 config file, a missing file is fine.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}
