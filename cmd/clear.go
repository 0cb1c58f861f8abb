package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/tasks"
	"github.com/desertthunder/songshift/internal/ui"
	"github.com/urfave/cli/v3"
)

const clearPrompt = "This removes every saved track and playlist from your Spotify account."

// Clear empties the Spotify library after the user types the confirmation word or passes --yes.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		ok, err := ui.Confirm(ctx, r.input, r.output, clearPrompt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: clear aborted", shared.ErrConfirmationRequired)
		}
	}

	cleaner, err := r.spotifyService(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("clearing spotify library")

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done, func(u tasks.ProgressUpdate) string { return "  " + u.Message })

	result, err := tasks.NewClearEngine(cleaner, shared.WithLogger(r.logger, "task", "clear")).Run(ctx, progress)
	close(progress)
	<-done

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Clear Complete!")
		r.writePlain("Tracks removed:    %d\n", result.TracksRemoved)
		r.writePlain("Playlists removed: %d\n", result.PlaylistsRemoved)
	}
	return err
}
