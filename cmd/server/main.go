package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/screen-inventory-service/internal/config"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/server"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(); err != nil {
		logging.Warn(logging.NewLogger(logging.Config{}), "dotenv not loaded", "error", err)
	}
	cfg := config.Load()

	logger, closeLogs := buildLogger(cfg)
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "server setup failed", err)
		return 1
	}
	srv.Run(ctx, stop)
	return 0
}
