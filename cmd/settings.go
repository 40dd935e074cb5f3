package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/repositories"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints the persisted settings record.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	key := r.config.Player.StorageKey
	settings, err := player.LoadSettings(repositories.NewPreferenceRepository(db), key)
	if errors.Is(err, shared.ErrCorruptSettings) {
		return fmt.Errorf("%w; run 'tapedeck settings reset' to clear it", err)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(settings, true)
	}

	lastVolume := "unset"
	if settings.LastVolume != nil {
		lastVolume = fmt.Sprintf("%.0f%%", *settings.LastVolume*100)
	}
	shuffle := "off"
	if settings.IsRandom {
		shuffle = "on"
	}

	return r.writePlain("Key: %s\nShuffle: %s\nRepeat: %s\nLast volume: %s\n", key, shuffle, settings.RepeatMode, lastVolume)
}

// SettingsReset removes the settings record.
func (r *Runner) SettingsReset(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	key := r.config.Player.StorageKey
	if err := repositories.NewPreferenceRepository(db).Remove(key); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	r.logger.Info("settings reset", "key", key)
	return r.writePlain("✓ Player settings reset to defaults\n")
}
