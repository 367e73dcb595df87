package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set remote.url and remote.key (or %s / %s)\n", shared.EnvSupabaseURL, shared.EnvSupabaseAnonKey)
	r.writePlain("2. Run 'coursecat connect' to check the remote\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// With the sqlite driver the database is the remote itself (remote.url), otherwise database.path is used.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warn("failed to load config, using current settings", "error", err)
		} else {
			loaded.ApplyEnv(os.Getenv)
			config = loaded
		}
	} else {
		r.logger.Info("config file not found, using current settings", "path", configPath)
	}

	path := config.Database.Path
	if config.Remote.Driver == shared.DriverSQLite && config.Remote.Configured() {
		path = config.Remote.URL
	}

	r.logger.Info("initializing database", "path", path)

	db, err := shared.OpenMigrated(path, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ Database ready at %s\n", path)
	return nil
}
