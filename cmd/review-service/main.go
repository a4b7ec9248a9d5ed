package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"review-service/internal/app"
	"review-service/internal/config"
)

func main() {
	// Local development convenience; the file is absent in containers.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer func() {
		_ = application.Logger().Sync()
	}()

	if err := application.Run(); err != nil {
		application.Logger().Error("application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
