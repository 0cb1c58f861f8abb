package main

import (
	"context"
	"time"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/repositories"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

type runView struct {
	ID          string           `json:"id"`
	Sequence    int              `json:"sequence"`
	LibraryPath string           `json:"library_path"`
	Status      models.RunStatus `json:"status"`
	Counts      models.RunCounts `json:"counts"`
	Error       string           `json:"error,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

func newRunView(run *models.Run) runView {
	return runView{
		ID:          run.ID(),
		Sequence:    run.Sequence(),
		LibraryPath: run.LibraryPath(),
		Status:      run.Status(),
		Counts:      run.Counts(),
		Error:       run.ErrorMessage(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
	}
}

// History lists recorded imports, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"limit":  int(cmd.Int("limit")),
		"status": cmd.String("status"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run))
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("No imports recorded in %s\n", r.config.Database.Path)
	}

	for _, run := range runs {
		c := run.Counts()
		r.writePlain("#%-4d %-9s %s  %s\n", run.Sequence(), run.Status(), humanize.Time(run.StartedAt()), run.LibraryPath())
		r.writePlain("      %s songs, %s matched, %s cached, %s unmatched, %d playlists\n",
			humanize.Comma(int64(c.Total)),
			humanize.Comma(int64(c.Matched)),
			humanize.Comma(int64(c.Cached)),
			humanize.Comma(int64(c.Unmatched)),
			c.PlaylistsCreated,
		)
		if msg := run.ErrorMessage(); msg != "" {
			r.writePlain("      error: %s\n", msg)
		}
	}
	return nil
}
