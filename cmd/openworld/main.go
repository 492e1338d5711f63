package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"runtime"

	"openworld/internal/logger"
	"openworld/pkg/config"
	"openworld/pkg/engine"
)

func init() {
	// GLFW and the GL context must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("%v", err)
	case err != nil:
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer logger.Close()

	logger.Infof("Starting %s...", cfg.Graphics.Title)

	game, err := engine.NewEngine(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize engine: %v", err)
	}

	logger.Info("Engine initialized, starting frame loop...")
	if err := game.Run(); err != nil {
		logger.Fatalf("Frame loop stopped: %v", err)
	}
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	if cfg.File == "" {
		return logger.NewLogger(cfg.Level), nil
	}
	return logger.NewMultiLogger(cfg.Level, cfg.File)
}
