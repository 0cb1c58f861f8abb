package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songshift/internal/formatter"
	"github.com/desertthunder/songshift/internal/repositories"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/desertthunder/songshift/internal/tasks"
	"github.com/desertthunder/songshift/internal/ui"
	"github.com/urfave/cli/v3"
)

// Import resolves the songs of a library export against Spotify, saves the mapping and
// unmatched report, then adds matched songs to the library and recreates playlists.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: library path", shared.ErrMissingArgument)
	}

	lib, stats, err := formatter.LoadLibrary(path)
	if err != nil {
		return err
	}
	if skipped := stats.Skipped(); skipped > 0 {
		r.logger.Warn("malformed records skipped", "count", skipped)
	}

	cfg := r.config.Import
	store, err := r.mappingStore(stringOr(cmd, "mapping-store", cfg.MappingStore), stringOr(cmd, "mapping", cfg.MappingPath))
	if err != nil {
		return err
	}

	target, err := r.spotifyService(ctx)
	if err != nil {
		return err
	}
	resolver, err := r.resolver(target)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "task", "import")
	opts := []tasks.ImportOption{
		tasks.WithResolver(resolver),
		tasks.WithLogger(logger),
		tasks.WithETAWindow(cfg.ETAWindow),
	}
	if db, err := r.database(); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	} else {
		opts = append(opts, tasks.WithRunRecorder(repositories.NewRunRepository(db)))
	}

	r.logger.Info("starting import", "library", path, "songs", lib.Len(), "playlists", len(lib.Playlists), "mapping", store)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go r.printProgress(progress, done, importLine(cmd.Bool("quiet")))

	engine := tasks.NewImportEngine(target, store, opts...)
	result, err := engine.Run(ctx, progress, lib, tasks.ImportOpts{
		LibraryPath:  path,
		Skipped:      stats.Skipped(),
		Resume:       cmd.Bool("resume"),
		DryRun:       cmd.Bool("dry-run"),
		BatchSize:    cfg.BatchSize,
		ReportPath:   stringOr(cmd, "report", cfg.ReportPath),
		ReportFormat: stringOr(cmd, "report-format", cfg.ReportFormat),
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlain("\n%s", ui.RenderRunCounts(result.Counts))
		if result.ReportPath != "" {
			r.writePlain("%s\n", ui.Hint(fmt.Sprintf("Unmatched songs written to %s", result.ReportPath)))
		}
		if !result.Resolved {
			r.writePlain("%s\n", ui.Hint("Existing mapping used; pass --resume to resolve unmapped songs"))
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		r.writePlain("%s\n", ui.Warning("Dry run: Spotify library left unchanged"))
		return nil
	}
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Saved %d tracks to the Spotify library", result.Added)))
	return nil
}

// importLine renders progress updates; resolution steps become a progress bar line.
func importLine(quiet bool) func(tasks.ProgressUpdate) string {
	return func(u tasks.ProgressUpdate) string {
		if quiet {
			return ""
		}
		if p, ok := u.Data.(tasks.ImportProgress); ok {
			line := ui.RenderImportProgress(p)
			if !p.Result.OK() {
				line += " " + ui.Warning(u.Message+" unmatched")
			}
			return line
		}
		return u.Message
	}
}
