// Command msgriskd runs the message risk scoring service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/antifraud/msgrisk/internal/bootstrap"
	"github.com/antifraud/msgrisk/internal/infrastructure/config"
	"github.com/antifraud/msgrisk/pkg/observability"
)

func main() {
	configPath := flag.String("config", os.Getenv("MSGRISK_CONFIG"), "config file (YAML)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load(config.New(), *configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Service.Name,
	})

	logger.Info("starting msgrisk",
		"http_port", cfg.Server.HTTPPort,
		"grpc_port", cfg.Server.GRPCPort,
		"model", cfg.Model.Name,
	)

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("msgrisk exited with error", "error", err)
		os.Exit(1)
	}
}
