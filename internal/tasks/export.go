package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
)

// ExportResult holds an exported library and what was dropped.
type ExportResult struct {
	Library     *models.Library
	SavedTracks int // distinct saved tracks
	Playlists   int
	Skipped     int // tracks without artist or title
}

// ExportEngine builds a [models.Library] from a [services.LibrarySource].
type ExportEngine struct {
	source services.LibrarySource
	logger *log.Logger
	newID  func() string
}

// NewExportEngine creates an [ExportEngine] reading from source.
func NewExportEngine(source services.LibrarySource, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &ExportEngine{source: source, logger: logger, newID: shared.GenerateID}
}

type exportState struct {
	lib   *models.Library
	songs map[string]string // service track key -> song id
}

// Run pulls saved tracks and then playlists.
//
// Each distinct service track gets one new song id. Saved tracks are marked in library;
// tracks seen only in playlists are not.
func (e *ExportEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: export source not initialized", shared.ErrServiceUnavailable)
	}

	state := &exportState{lib: models.NewLibrary(), songs: make(map[string]string)}
	result := &ExportResult{Library: state.lib}

	saved, err := e.source.SavedTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved tracks from %s: %w", e.source.Name(), err)
	}
	for _, track := range saved {
		if _, ok := e.songID(state, track, true); !ok {
			result.Skipped++
		}
	}
	result.SavedTracks = state.lib.Len()
	sendProgress(progress, fetchSavedUpdate(result.SavedTracks))
	e.logger.Info("saved tracks exported", "source", e.source.Name(), "tracks", result.SavedTracks)

	playlists, err := e.source.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists from %s: %w", e.source.Name(), err)
	}
	for i, export := range playlists {
		ids := make([]string, 0, len(export.Tracks))
		for _, track := range export.Tracks {
			id, ok := e.songID(state, track, false)
			if !ok {
				result.Skipped++
				continue
			}
			ids = append(ids, id)
		}

		name := export.Playlist.Name
		if name == "" {
			name = export.Playlist.ID
		}
		state.lib.AddPlaylist(name, ids)
		result.Playlists++
		sendProgress(progress, fetchPlaylistUpdate(i+1, len(playlists), &state.lib.Playlists[len(state.lib.Playlists)-1]))
	}

	if result.Skipped > 0 {
		e.logger.Warn("tracks without artist or title skipped", "count", result.Skipped)
	}
	return result, nil
}

// songID returns the song id for track, adding the song on first sight.
func (e *ExportEngine) songID(state *exportState, track services.Track, inLibrary bool) (string, bool) {
	if track.Artist == "" || track.Title == "" {
		return "", false
	}

	key := track.ID
	if key == "" {
		key = track.Ref().String()
	}
	if id, ok := state.songs[key]; ok {
		return id, true
	}

	id := e.newID()
	state.songs[key] = id
	state.lib.Add(&models.Song{ID: id, TrackRef: track.Ref(), InLibrary: inLibrary})
	return id, true
}
