package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
	"github.com/SyedSaifuddin045/spolist/internal/storage"
)

// Setup creates a config file from the embedded template and initializes
// the session storage backend.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing session storage", "backend", config.Storage.Backend)

	slot, err := storage.Open(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if closer, ok := slot.(*storage.SQLiteSlot); ok {
		defer closer.Close()
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify client_id to %s\n", configPath)
	r.writePlain("2. Run 'spolist auth login' to authenticate\n")
	return nil
}
