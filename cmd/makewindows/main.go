package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/upfall/sensor-backend-go/internal/config"
	"github.com/upfall/sensor-backend-go/internal/database"
	"github.com/upfall/sensor-backend-go/internal/repository"
	"github.com/upfall/sensor-backend-go/internal/service"
	"github.com/upfall/sensor-backend-go/internal/windowing"
)

func main() {
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

	segmenter, err := windowing.NewSegmenter(
		time.Duration(cfg.WindowSeconds*float64(time.Second)),
		time.Duration(cfg.StrideSeconds*float64(time.Second)))
	if err != nil {
		logger.Fatal("invalid windowing configuration", zap.Error(err))
	}

	windows := service.NewWindowService(db,
		repository.NewRawRepository(db),
		repository.NewWindowRepository(db),
		segmenter, logger)

	summary, err := windows.Run(context.Background())
	if err != nil {
		logger.Fatal("windowing run failed", zap.Error(err))
	}

	logger.Info("created windows",
		zap.Int("windows", summary.Windows),
		zap.Float64("window_seconds", summary.WindowSeconds),
		zap.Float64("stride_seconds", summary.StrideSeconds),
		zap.Float64("sample_rate_hz", cfg.SampleRateHz))
}
