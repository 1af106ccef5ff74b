// @title CourseHub API
// @version 1.0
// @description Backend server for the CourseHub course platform.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"coursehub_backend/internal/app"
	"coursehub_backend/internal/config"
	"coursehub_backend/pkg/configwatcher"
	"coursehub_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "force database migrations on startup")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration finished, exiting")
		return
	}

	// Hot-reload runtime-tunable settings (rate limits, CORS origins).
	go configwatcher.WatchConfig("configs/config.yaml", application.ReloadConfig)

	application.Run()
}
