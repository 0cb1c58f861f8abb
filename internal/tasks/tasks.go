// package tasks implements the library migration operations: import, export and clear.
//
// Engines emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/formatter"
	"github.com/desertthunder/songshift/internal/matcher"
	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
)

// MappingStore loads and persists a [models.MappingTable].
//
// Implemented by [formatter.CSVMappingStore] and repositories.MappingRepository.
type MappingStore interface {
	Load(ctx context.Context) (*models.MappingTable, error)
	Save(ctx context.Context, table *models.MappingTable) error
}

// RunRecorder stores import history.
type RunRecorder interface {
	Create(run *models.Run) error
	Update(run *models.Run) error
}

// TrackResolver resolves one song to an external id.
//
// An error means the run cannot continue, such as a rejected token; an unmatched song is
// reported through the result.
type TrackResolver interface {
	Resolve(ctx context.Context, t models.TrackRef) (models.MatchResult, error)
}

// ImportOpts configures one [ImportEngine.Run].
type ImportOpts struct {
	LibraryPath  string // recorded in run history
	Skipped      int    // malformed records dropped while loading the library
	Resume       bool   // resolve songs missing from an existing mapping
	DryRun       bool   // stop after the mapping and report are written
	BatchSize    int    // ids per bulk call, at most [services.MaxBatchSize]
	ReportPath   string // unmatched report location; empty disables the report
	ReportFormat string // json, csv or text
}

// ImportResult summarizes an import.
type ImportResult struct {
	Counts     models.RunCounts
	Mapping    *models.MappingTable
	Unmatched  []models.UnmatchedSong
	Resolved   bool   // false when an existing mapping skipped resolution
	ReportPath string // set when a report was written
	Added      int    // tracks saved to the library
	Run        *models.Run
}

// ImportEngine resolves a source library against a target service and recreates it there.
type ImportEngine struct {
	target   services.LibraryTarget
	store    MappingStore
	resolver TrackResolver
	runs     RunRecorder
	logger   *log.Logger
	now      func() time.Time
	window   int
}

// ImportOption configures an [ImportEngine].
type ImportOption func(*ImportEngine)

// WithResolver replaces the default resolver built over the target's search.
func WithResolver(r TrackResolver) ImportOption {
	return func(e *ImportEngine) { e.resolver = r }
}

// WithRunRecorder records each run in history.
func WithRunRecorder(r RunRecorder) ImportOption {
	return func(e *ImportEngine) { e.runs = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) ImportOption {
	return func(e *ImportEngine) { e.logger = l }
}

// WithClock replaces [time.Now] for ETA estimation.
func WithClock(now func() time.Time) ImportOption {
	return func(e *ImportEngine) { e.now = now }
}

// WithETAWindow sets the number of latency samples used for the ETA.
func WithETAWindow(n int) ImportOption {
	return func(e *ImportEngine) { e.window = n }
}

// NewImportEngine creates an [ImportEngine] adding tracks to target and keeping mappings in store.
func NewImportEngine(target services.LibraryTarget, store MappingStore, opts ...ImportOption) *ImportEngine {
	e := &ImportEngine{
		target: target,
		store:  store,
		logger: shared.DiscardLogger(),
		now:    time.Now,
		window: DefaultETAWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = matcher.NewResolver(target, matcher.WithLogger(e.logger))
	}
	return e
}

// Run imports lib.
//
// The mapping is persisted before any bulk call, so a failed run can be repeated without
// resolving again. Unmatched songs never fail the run; a rejected token does.
func (e *ImportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, lib *models.Library, opts ImportOpts) (*ImportResult, error) {
	if e.target == nil || e.store == nil {
		return nil, fmt.Errorf("%w: import target not initialized", shared.ErrServiceUnavailable)
	}
	if lib == nil {
		return nil, fmt.Errorf("%w: no library", shared.ErrMissingArgument)
	}

	result := &ImportResult{Counts: models.RunCounts{Total: lib.Len(), Skipped: opts.Skipped}}
	result.Run = e.startRun(opts.LibraryPath)

	err := e.run(ctx, progress, lib, opts, result)
	e.finishRun(result, err)
	return result, err
}

func (e *ImportEngine) run(ctx context.Context, progress chan<- ProgressUpdate, lib *models.Library, opts ImportOpts, result *ImportResult) error {
	mapping, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}
	result.Mapping = mapping
	sendProgress(progress, loadMappingUpdate(storeName(e.store), mapping.Len()))

	// An empty mapping counts as absent.
	resolve := mapping.Len() == 0 || opts.Resume
	if !resolve {
		e.logger.Info("mapping present, skipping resolution", "mappings", mapping.Len())
	}

	unmatched, err := e.resolve(ctx, progress, lib, mapping, resolve, result)
	result.Unmatched = unmatched
	result.Resolved = resolve

	if resolve {
		if saveErr := e.store.Save(ctx, mapping); saveErr != nil {
			return errors.Join(err, fmt.Errorf("failed to save mapping: %w", saveErr))
		}
		sendProgress(progress, saveMappingUpdate(storeName(e.store), mapping.Len()))
	}
	if err != nil {
		return err
	}

	if len(unmatched) > 0 && opts.ReportPath != "" {
		format := opts.ReportFormat
		if format == "" {
			format = shared.ReportFormatJSON
		}
		if err := formatter.WriteReport(opts.ReportPath, format, unmatched); err != nil {
			return fmt.Errorf("failed to write unmatched report: %w", err)
		}
		result.ReportPath = opts.ReportPath
		sendProgress(progress, writeReportUpdate(opts.ReportPath, len(unmatched)))
	}

	if opts.DryRun {
		e.logger.Info("dry run, skipping library changes")
		return nil
	}

	size := batchSize(opts.BatchSize)
	if err := e.addToLibrary(ctx, progress, lib, mapping, size, result); err != nil {
		return err
	}
	return e.createPlaylists(ctx, progress, lib, mapping, size, result)
}

// resolve walks the library in order. Songs already mapped count as cached.
func (e *ImportEngine) resolve(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	lib *models.Library,
	mapping *models.MappingTable,
	enabled bool,
	result *ImportResult,
) ([]models.UnmatchedSong, error) {
	var pending []*models.Song
	var unmatched []models.UnmatchedSong
	for _, song := range lib.Songs {
		if _, ok := mapping.Get(song.ID); ok {
			result.Counts.Cached++
			continue
		}
		if !enabled {
			result.Counts.Unmatched++
			unmatched = append(unmatched, models.NewUnmatchedSong(song))
			continue
		}
		pending = append(pending, song)
	}

	eta := NewETAEstimator(e.window, e.now)
	total := len(pending)
	for i, song := range pending {
		if err := ctx.Err(); err != nil {
			return unmatched, fmt.Errorf("resolution stopped after %d of %d songs: %w", i, total, err)
		}

		eta.Tick()
		match, err := e.resolver.Resolve(ctx, song.TrackRef)
		if err != nil {
			return unmatched, fmt.Errorf("resolution stopped after %d of %d songs: %w", i, total, err)
		}
		if match.OK() {
			if err := mapping.Put(song.ID, match.ExternalID()); err != nil {
				return unmatched, fmt.Errorf("%w: %v", shared.ErrMalformedRecord, err)
			}
			result.Counts.Matched++
		} else {
			e.logger.Warn("unmatched", "song", song.TrackRef, "reason", match.Reason())
			result.Counts.Unmatched++
			unmatched = append(unmatched, models.NewUnmatchedSong(song))
		}

		done := i + 1
		remaining, known := eta.Estimate(total - done)
		sendProgress(progress, resolveUpdate(ImportProgress{
			Done:     done,
			Total:    total,
			Percent:  float64(done) / float64(total) * 100,
			ETA:      remaining,
			ETAKnown: known,
			Result:   match,
		}, song))
	}
	return unmatched, nil
}

// addToLibrary saves the unique external ids of in-library songs.
func (e *ImportEngine) addToLibrary(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	lib *models.Library,
	mapping *models.MappingTable,
	size int,
	result *ImportResult,
) error {
	seen := make(map[string]bool)
	var ids []string
	for _, song := range lib.Songs {
		if !song.InLibrary {
			continue
		}
		id, ok := mapping.Get(song.ID)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	batches := Batches(ids, size)
	for i, batch := range batches {
		sendProgress(progress, addLibraryUpdate(i+1, len(batches), len(batch)))
		if err := e.target.AddToLibrary(ctx, batch); err != nil {
			return fmt.Errorf("failed to save tracks %d-%d: %w", i*size+1, i*size+len(batch), err)
		}
		result.Added += len(batch)
	}
	e.logger.Info("library updated", "tracks", result.Added, "batches", len(batches))
	return nil
}

// createPlaylists recreates each source playlist with its matched songs.
//
// Source songs are taken in chunks of size; a chunk with no matched song is skipped and
// the playlist continues with the next chunk.
func (e *ImportEngine) createPlaylists(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	lib *models.Library,
	mapping *models.MappingTable,
	size int,
	result *ImportResult,
) error {
	for i, pl := range lib.Playlists {
		playlistID, err := e.target.CreatePlaylist(ctx, pl.Name)
		if err != nil {
			return fmt.Errorf("failed to create playlist %q: %w", pl.Name, err)
		}
		result.Counts.PlaylistsCreated++

		added := 0
		for _, chunk := range Batches(pl.SongIDs, size) {
			ids := make([]string, 0, len(chunk))
			for _, songID := range chunk {
				if id, ok := mapping.Get(songID); ok {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				continue
			}
			if err := e.target.AddToPlaylist(ctx, playlistID, ids); err != nil {
				return fmt.Errorf("failed to add tracks to playlist %q: %w", pl.Name, err)
			}
			added += len(ids)
		}

		e.logger.Debug("playlist created", "name", pl.Name, "id", playlistID, "tracks", added)
		sendProgress(progress, createPlaylistUpdate(i+1, len(lib.Playlists), pl.Name, added))
	}
	return nil
}

func (e *ImportEngine) startRun(path string) *models.Run {
	if e.runs == nil {
		return nil
	}
	if path == "" {
		path = "-"
	}
	run := models.NewRun(path)
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return nil
	}
	return run
}

func (e *ImportEngine) finishRun(result *ImportResult, err error) {
	if result.Run == nil {
		return
	}
	if err != nil {
		result.Run.Fail(result.Counts, err)
	} else {
		result.Run.Complete(result.Counts)
	}
	if err := e.runs.Update(result.Run); err != nil {
		e.logger.Warn("failed to update run", "id", result.Run.ID(), "error", err)
	}
}

// Batches splits ids into consecutive slices of at most size elements.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = services.MaxBatchSize
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}

func batchSize(n int) int {
	if n <= 0 || n > services.MaxBatchSize {
		return services.MaxBatchSize
	}
	return n
}

func storeName(store MappingStore) string {
	if s, ok := store.(fmt.Stringer); ok {
		return s.String()
	}
	return "mapping store"
}
