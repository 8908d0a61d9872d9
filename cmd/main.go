package main

import (
	"context"
	"log"

	"github.com/agrovision/stress-map-service/internal/server"
	"github.com/agrovision/stress-map-service/pkg/config"
	"github.com/agrovision/stress-map-service/pkg/container"
	"github.com/agrovision/stress-map-service/pkg/logger"
)

func main() {
	// Initialize basic logger for startup
	startupLogger := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	startupLogger.Info("Starting Stress Map Service")

	// Load configuration
	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize configured logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	appLogger.Info("Configuration loaded",
		"env", cfg.Env,
		"bucket", cfg.GCP.BucketName,
		"processor_binary", cfg.Processor.BinaryPath,
	)

	ctx := context.Background()

	// Initialize container
	cnt, err := container.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize container", "error", err)
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer func() {
		if err := cnt.Close(); err != nil {
			appLogger.Error("Error closing container", "error", err)
		}
	}()

	appLogger.Info("Serving HTTP", "port", cfg.Server.Port)

	if err := server.Start(cfg, cnt.Handler); err != nil {
		appLogger.Error("HTTP server stopped", "error", err)
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
