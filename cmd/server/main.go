package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smarthr/internal/app/server"
	"smarthr/internal/platform/config"
	"smarthr/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, cfg); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
