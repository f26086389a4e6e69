package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"trafficsense/internal/app"
	"trafficsense/internal/config"
	"trafficsense/internal/logger"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to start server: %v", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		appLogger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
