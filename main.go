package main

import (
	"learning_dashboard_backend/internal/app"
	"learning_dashboard_backend/internal/config"
	"learning_dashboard_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
