package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloudpico-kiosk/internal/app"
	"cloudpico-kiosk/internal/config"
	"cloudpico-kiosk/internal/logging"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

const appName = "cloudpico-kiosk"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: config: %v\n", appName, err)
		return 1
	}

	slog.SetDefault(logging.New(cfg, version, appName))
	slog.Info("kiosk starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"display", cfg.DisplayDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.Run(ctx, cfg)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		slog.Info("shutting down")
		return 0
	default:
		slog.Error("kiosk stopped", "error", err)
		return 1
	}
}
