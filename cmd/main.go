package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	slot, err := storage.Open(config.Storage)
	if err != nil {
		logger.Fatalf("failed to open session storage: %v", err)
	}

	var history *storage.SQLiteSlot
	if sqliteSlot, ok := slot.(*storage.SQLiteSlot); ok {
		history = sqliteSlot
		defer sqliteSlot.Close()
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Slot:    slot,
		History: history,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spolist",
		Usage:    "Search, download & queue Spotify tracks from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
