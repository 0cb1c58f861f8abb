package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songshift/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the default config file when it is missing, then creates the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			r.logger.Info("config file found", "path", r.configPath)
		} else {
			r.logger.Info("config file not found, creating from template", "path", r.configPath)
			if err := shared.CreateConfigFile(r.configPath); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			r.writePlain("✓ Config written to %s\n", r.configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return err
	}

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	r.writePlain("✓ Database ready at %s (%d migrations applied)\n", r.config.Database.Path, len(versions))
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret in %s (or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)\n", r.configPath)
	r.writePlain("2. Run 'songshift auth' to authorize with Spotify\n")
	return nil
}
