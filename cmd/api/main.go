package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NetIntelAPI/internal/app"
	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting Network Intelligence API Server")

	// 3. Signals cancel ctx, which drives the graceful shutdown in Run
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Wire stores, providers, services and handlers
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application: %v", err)
	}
	defer application.Close()

	// 5. Serve
	if err := application.Run(ctx); err != nil {
		log.Error("Server failed: %v", err)
		application.Close()
		log.Close()
		os.Exit(1)
	}

	log.Info("Shutdown complete")
}
