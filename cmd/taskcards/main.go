package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"taskcards/internal/config"
	"taskcards/internal/logger"
	"taskcards/internal/session"
	"taskcards/internal/storage"
	"taskcards/internal/ui"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.Init(config.AppName, cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store, err := storage.Open()
	if err != nil {
		fmt.Printf("failed to open task store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sess := session.New(store, session.WithLogger(log))
	if cfg.Seed {
		if err := sess.Seed(); err != nil {
			fmt.Printf("failed to seed tasks: %v\n", err)
			os.Exit(1)
		}
	}
	log.WithField("config", configPath).Info("starting")

	if err := ui.Run(sess, cfg, log); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}
