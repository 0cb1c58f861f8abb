// package services defines the interfaces the migration engines use to talk to music
// providers and implements them for Spotify and YouTube Music (via proxy)
package services

import (
	"context"

	"github.com/desertthunder/songshift/internal/models"
)

// MaxBatchSize is the largest number of ids a bulk mutation accepts.
const MaxBatchSize = 50

// LibrarySource reads a user's library from a music provider.
type LibrarySource interface {
	// SavedTracks returns every track saved to the user's library.
	SavedTracks(ctx context.Context) ([]Track, error)

	// Playlists returns every playlist with its tracks.
	Playlists(ctx context.Context) ([]PlaylistExport, error)

	// Name returns the name of the service (e.g., "Spotify", "YouTube Music")
	Name() string
}

// LibraryTarget receives an imported library.
type LibraryTarget interface {
	// Search returns candidates for a field query such as "artist:a track:t".
	Search(ctx context.Context, query string) ([]models.Candidate, error)

	// AddToLibrary saves up to [MaxBatchSize] tracks.
	AddToLibrary(ctx context.Context, ids []string) error

	// CreatePlaylist creates a private playlist for the current user and returns its id.
	CreatePlaylist(ctx context.Context, name string) (string, error)

	// AddToPlaylist appends up to [MaxBatchSize] tracks to a playlist.
	AddToPlaylist(ctx context.Context, playlistID string, ids []string) error
}

// LibraryCleaner removes saved tracks and playlists page by page.
type LibraryCleaner interface {
	// SavedTrackPage returns the ids of the first limit saved tracks.
	SavedTrackPage(ctx context.Context, limit int) ([]string, error)

	// RemoveFromLibrary removes up to [MaxBatchSize] saved tracks.
	RemoveFromLibrary(ctx context.Context, ids []string) error

	// PlaylistPage returns the first limit playlists the user follows.
	PlaylistPage(ctx context.Context, limit int) ([]Playlist, error)

	// Unfollow removes a playlist from the user's library.
	Unfollow(ctx context.Context, playlistID string) error
}

// Playlist represents a music playlist from any service
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}

// PlaylistExport represents a playlist with all its tracks for migration
type PlaylistExport struct {
	Playlist Playlist
	Tracks   []Track
}

// Track represents a music track from any service
type Track struct {
	ID     string
	Title  string
	Artist string
	Album  string
}

// Ref returns the track's metadata.
func (t Track) Ref() models.TrackRef {
	return models.TrackRef{Artist: t.Artist, Title: t.Title, Album: t.Album}
}
