// Command sizectl validates reference data, resolves sizes offline and
// imports the sleeve catalog into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/sleeveselector/internal/config"
	"example.com/sleeveselector/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel, "console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, logger).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
