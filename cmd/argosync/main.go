package main

import (
	"context"
	"log/slog"

	"argosync/cmd/argosync/commands"
	"argosync/lib/serviceutil"
	"argosync/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "argosync")
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer t.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
