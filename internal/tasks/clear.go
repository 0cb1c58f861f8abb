package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
)

// ClearResult counts what [ClearEngine.Run] removed.
type ClearResult struct {
	TracksRemoved    int
	PlaylistsRemoved int
}

// ClearEngine empties a user's library.
type ClearEngine struct {
	cleaner services.LibraryCleaner
	logger  *log.Logger
}

// NewClearEngine creates a [ClearEngine] using cleaner.
func NewClearEngine(cleaner services.LibraryCleaner, logger *log.Logger) *ClearEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &ClearEngine{cleaner: cleaner, logger: logger}
}

// Run removes saved tracks page by page until none remain, then unfollows every playlist.
//
// Fails when the service keeps returning the same page after a removal.
func (e *ClearEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*ClearResult, error) {
	if e.cleaner == nil {
		return nil, fmt.Errorf("%w: library cleaner not initialized", shared.ErrServiceUnavailable)
	}

	result := &ClearResult{}
	if err := e.clearTracks(ctx, progress, result); err != nil {
		return result, err
	}
	if err := e.clearPlaylists(ctx, progress, result); err != nil {
		return result, err
	}

	e.logger.Info("library cleared", "tracks", result.TracksRemoved, "playlists", result.PlaylistsRemoved)
	return result, nil
}

func (e *ClearEngine) clearTracks(ctx context.Context, progress chan<- ProgressUpdate, result *ClearResult) error {
	var previous []string
	for {
		ids, err := e.cleaner.SavedTrackPage(ctx, services.MaxBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list saved tracks: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if slices.Equal(ids, previous) {
			return fmt.Errorf("%w: saved tracks were not removed", shared.ErrAPIRequest)
		}

		if err := e.cleaner.RemoveFromLibrary(ctx, ids); err != nil {
			return fmt.Errorf("failed to remove saved tracks: %w", err)
		}
		result.TracksRemoved += len(ids)
		previous = ids
		sendProgress(progress, removeTracksUpdate(result.TracksRemoved))
	}
}

func (e *ClearEngine) clearPlaylists(ctx context.Context, progress chan<- ProgressUpdate, result *ClearResult) error {
	var previous []services.Playlist
	for {
		page, err := e.cleaner.PlaylistPage(ctx, services.MaxBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		if len(page) == 0 {
			return nil
		}
		if slices.Equal(page, previous) {
			return fmt.Errorf("%w: playlists were not removed", shared.ErrAPIRequest)
		}

		for _, pl := range page {
			if err := e.cleaner.Unfollow(ctx, pl.ID); err != nil {
				return fmt.Errorf("failed to remove playlist %q: %w", pl.Name, err)
			}
			result.PlaylistsRemoved++
			sendProgress(progress, unfollowUpdate(result.PlaylistsRemoved, pl.Name))
		}
		previous = page
	}
}
