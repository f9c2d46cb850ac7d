package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	confirmationworker "github.com/wolfman30/lumiere-booking/internal/worker/confirmation"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := confirmationworker.Run(ctx, cfg, logger); err != nil {
		logger.Error("confirmation worker failed", "error", err)
		os.Exit(1)
	}
}
