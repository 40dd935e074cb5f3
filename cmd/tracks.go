package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tapedeck/internal/formatter"
	"github.com/desertthunder/tapedeck/internal/library"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Tracks prints or exports the tracks play would queue for a path.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a track list or music directory", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := library.New(r.logger).Load(path)
	if err != nil {
		return err
	}
	listing := formatter.Listing{Name: path, Tracks: tracks}

	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(listing, format, out); err != nil {
			return err
		}
		r.logger.Info("tracks exported", "path", out, "format", format, "tracks", len(tracks))
		return nil
	}

	data, err := formatter.Render(listing, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
