package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KMDPriyashan/tripzy/internal/client/cli"
	"github.com/KMDPriyashan/tripzy/internal/client/config"
	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/KMDPriyashan/tripzy/internal/logging"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel).With("app", common.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "run failed", "error", err)
		os.Exit(1)
	}
}
