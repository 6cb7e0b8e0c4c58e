// Package main is the entry point for the Terrastream map viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/game"
	"github.com/Faultbox/terrastream/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Terrastream ===",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("dir", cfg.Storage.Dir))
	logger.Sugar.Debugf("Config: %+v", cfg)

	_, forceSeed := config.SeedOverride()
	g, err := game.New(cfg, game.SessionOptions{ForceSeed: forceSeed})
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
