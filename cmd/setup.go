package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file if none exists at --config, then creates and migrates
// the preferences database it points to.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	created, err := ensureConfigFile(configPath)
	if err != nil {
		return err
	}
	if created {
		r.logger.Info("config file created from template", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config
	r.configPath = configPath

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}
	r.logger.Info("database ready", "path", config.Database.Path, "schema", version)

	return r.writePlain("✓ Config: %s\n✓ Database: %s (schema version %d)\n", configPath, config.Database.Path, version)
}

// ensureConfigFile writes the default template to path unless a file is already there.
func ensureConfigFile(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := shared.CreateConfigFile(path); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}
}
