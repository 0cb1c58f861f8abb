package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/ui"
	"github.com/urfave/cli/v3"
)

type matchView struct {
	Artist     string  `json:"artist"`
	Title      string  `json:"title"`
	Album      string  `json:"album,omitempty"`
	Matched    bool    `json:"matched"`
	ExternalID string  `json:"external_id,omitempty"`
	Stage      string  `json:"stage,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// Match resolves one artist and title the way import does and prints the outcome.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	ref := models.TrackRef{
		Artist: cmd.StringArg("artist"),
		Title:  cmd.StringArg("title"),
		Album:  cmd.String("album"),
	}
	if ref.Artist == "" || ref.Title == "" {
		return fmt.Errorf("%w: artist and title", shared.ErrMissingArgument)
	}

	if cmd.Bool("plan") {
		resolver, err := r.resolver(nil)
		if err != nil {
			return err
		}
		for i, stage := range resolver.Plan(ref) {
			r.writePlain("%d. %-12s %s\n", i+1, stage.Stage, stage.Query)
		}
		return nil
	}

	searcher, err := r.spotifyService(ctx)
	if err != nil {
		return err
	}
	resolver, err := r.resolver(searcher)
	if err != nil {
		return err
	}

	result, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	view := matchView{
		Artist:     ref.Artist,
		Title:      ref.Title,
		Album:      ref.Album,
		Matched:    result.OK(),
		ExternalID: result.ExternalID(),
		Reason:     result.Reason(),
	}
	if result.OK() {
		view.Stage = result.Stage().String()
		view.Score = result.Score()
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	r.writePlain("%s\n", ref)
	if !result.OK() {
		return r.writePlain("%s %s\n", ui.Warning("✗ unmatched:"), result.Reason())
	}
	return r.writePlain("%s %s (stage %s, score %.3f)\n", ui.Success("✓"), result.ExternalID(), view.Stage, view.Score)
}
