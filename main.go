package main

import (
	"book_platform_backend/internal/app"
	"book_platform_backend/internal/config"
	"book_platform_backend/pkg/configwatcher"
	"book_platform_backend/pkg/logger"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @title Book Platform API
// @version 1.0
// @description Backend for the interactive book platform: accounts, sessions, role-based access and reading-progress tracking.
// @host localhost:8080
// @BasePath /api
func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)

	if cfg.MigrateOnly {
		logger.Log.Info("Migrations applied, exiting")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", func(updated *config.Config) {
		logger.Log.Info("Configuration file changed",
			zap.Int("total_chapters", updated.Content.TotalChapters))
	})

	application.Run()
}
