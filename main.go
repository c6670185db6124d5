package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"review-importer/cmd"
	"review-importer/config"
	"review-importer/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.RootCommand(cfg, logger).ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}
