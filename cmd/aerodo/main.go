package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"aerodo/internal/config"
	"aerodo/internal/storage"
	"aerodo/internal/ui"
)

func main() {
	configPath := config.ResolveConfigPath()
	firstLaunch := false
	if _, err := os.Stat(configPath); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogPath)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("started", zap.String("config", configPath), zap.String("db", cfg.DBPath))

	if err := ui.Run(store, cfg, configPath, firstLaunch, logger); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes JSON lines to path; the terminal itself belongs to the UI.
func newLogger(path string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}
