package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/library"
	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/repositories"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/desertthunder/tapedeck/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play loads tracks, restores settings from the database and runs the player TUI.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a track list or music directory", shared.ErrMissingArgument)
	}

	tracks, err := library.New(r.logger).Load(path)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no playable tracks in %s", shared.ErrEmptyQueue, path)
	}

	start := cmd.Int("start")
	if start < 0 || start >= len(tracks) {
		return fmt.Errorf("%w: --start %d with %d tracks", shared.ErrInvalidFlag, start, len(tracks))
	}

	// Logs go to a file while the TUI owns the terminal
	fileLogger, err := shared.NewFileLogger(r.config.Log.Path)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	media, err := r.newMedia(r.config.Player, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer media.Close()

	screen := ui.NewScreen()
	engine := player.New(player.Options{
		Media:       media,
		Store:       repositories.NewPreferenceRepository(db),
		View:        screen,
		Logger:      r.logger,
		StorageKey:  r.config.Player.StorageKey,
		Placeholder: r.config.Player.PlaceholderArtwork,
	})
	engine.SetQueueAndPlay(tracks, start)

	model := ui.NewModel(engine, screen, tracks, media.Events(), ui.Config{
		SeekStep:   r.config.Player.SeekStep,
		VolumeStep: r.config.Player.VolumeStep,
	})

	r.logger.Info("starting player", "source", path, "tracks", len(tracks), "start", start)
	if err := r.runProgram(model); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
