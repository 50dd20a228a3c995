package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/config"
	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/repository"
	"github.com/upfall/sensor-backend-go/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: loadraw <path_to_csv>")
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	ingest := service.NewIngestService(db, repository.NewRawRepository(db), logger)
	rows, err := ingest.LoadCSV(context.Background(), os.Args[1])
	if err != nil {
		logger.Fatal("failed to load CSV", zap.Error(err))
	}

	logger.Info("ingestion complete", zap.Int("rows", rows), zap.String("path", os.Args[1]))
}
