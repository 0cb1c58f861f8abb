package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songshift/internal/formatter"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Export reads the saved tracks and playlists of --source and writes a library export JSON.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	outputPath := cmd.String("output")
	if outputPath == "" {
		return fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	source, err := r.source(ctx, cmd.String("source"))
	if err != nil {
		return err
	}

	r.logger.Info("starting export", "source", source.Name(), "output", outputPath)
	r.writePlain("Exporting library from %s...\n", source.Name())

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done, func(u tasks.ProgressUpdate) string { return "  " + u.Message })

	engine := tasks.NewExportEngine(source, shared.WithLogger(r.logger, "task", "export"))
	result, err := engine.Run(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	if err := formatter.SaveLibrary(outputPath, result.Library); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Songs:     %s (%s saved)\n", humanize.Comma(int64(result.Library.Len())), humanize.Comma(int64(result.SavedTracks)))
	r.writePlain("Playlists: %s\n", humanize.Comma(int64(result.Playlists)))
	if result.Skipped > 0 {
		r.writePlain("Skipped:   %s tracks without artist or title\n", humanize.Comma(int64(result.Skipped)))
	}
	r.writePlain("Output:    %s\n", outputPath)
	return nil
}
