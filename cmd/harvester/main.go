package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"storefront-harvester/cmd/harvester/commands"
	"storefront-harvester/lib/telemetry"
	"storefront-harvester/lib/util/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())

	tel, err := telemetry.SetupFromEnv(ctx, "harvester")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("telemetry disabled", "err", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	cancel()

	if err != nil {
		os.Exit(1)
	}
}
