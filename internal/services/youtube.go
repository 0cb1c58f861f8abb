// YouTube Music [LibrarySource] implementation
//
// Communicates with a FastAPI proxy wrapping the ytmusicapi Python library.
// The proxy handles YouTube Music authentication; the auth file path is sent in the X-Auth-File header.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songshift/internal/shared"
	"github.com/go-resty/resty/v2"
)

const defaultYTBaseURL string = "http://127.0.0.1:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Artists []YouTubeArtist `json:"artists"`
	Album   *youtubeAlbum   `json:"album"`
}

func (t YouTubeTrack) track() Track {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	track := Track{ID: t.VideoID, Title: t.Title, Artist: strings.Join(names, ", ")}
	if t.Album != nil {
		track.Album = t.Album.Name
	}
	return track
}

// YouTubePlaylist represents a playlist from YouTube Music.
type YouTubePlaylist struct {
	ID          string         `json:"id"`
	PlaylistID  string         `json:"playlistId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Privacy     string         `json:"privacy"`
	Count       int            `json:"count"`
	TrackCount  int            `json:"trackCount"`
	Tracks      []YouTubeTrack `json:"tracks,omitempty"`
}

func (p YouTubePlaylist) playlist() Playlist {
	id := p.ID
	if id == "" {
		id = p.PlaylistID
	}
	count := p.TrackCount
	if count == 0 {
		count = p.Count
	}
	return Playlist{
		ID:          id,
		Name:        p.Title,
		Description: p.Description,
		TrackCount:  count,
		Public:      p.Privacy == "PUBLIC",
	}
}

type proxyError struct {
	Detail string `json:"detail"`
}

// YouTubeService reads a YouTube Music library through the proxy.
type YouTubeService struct {
	client *resty.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(cfg shared.YouTubeConfig) *YouTubeService {
	baseURL := cfg.ProxyURL
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(60*time.Second).
		SetHeader("Accept", "application/json")
	if cfg.AuthFile != "" {
		client.SetHeader("X-Auth-File", cfg.AuthFile)
	}

	return &YouTubeService{client: client}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

func (y *YouTubeService) get(ctx context.Context, endpoint string, result any, pathParams map[string]string) error {
	var errResp proxyError
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetResult(result).
		SetError(&errResp).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("%w: youtube music proxy: %v", shared.ErrServiceUnavailable, err)
	}

	if resp.IsError() {
		if errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode(), errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music API error: status %d", shared.ErrAPIRequest, resp.StatusCode())
	}
	return nil
}

// SavedTracks returns the songs in the user's library.
//
// Calls GET /api/library/songs on the proxy.
func (y *YouTubeService) SavedTracks(ctx context.Context) ([]Track, error) {
	var songs []YouTubeTrack
	if err := y.get(ctx, "/api/library/songs", &songs, nil); err != nil {
		return nil, err
	}

	tracks := make([]Track, len(songs))
	for i, s := range songs {
		tracks[i] = s.track()
	}
	return tracks, nil
}

// Playlists returns every library playlist with its tracks.
//
// Calls GET /api/library/playlists, then GET /api/playlists/{id} for each playlist.
func (y *YouTubeService) Playlists(ctx context.Context) ([]PlaylistExport, error) {
	var summaries []YouTubePlaylist
	if err := y.get(ctx, "/api/library/playlists", &summaries, nil); err != nil {
		return nil, err
	}

	exports := make([]PlaylistExport, 0, len(summaries))
	for _, s := range summaries {
		export, err := y.ExportPlaylist(ctx, s.playlist().ID)
		if err != nil {
			return nil, err
		}
		exports = append(exports, *export)
	}
	return exports, nil
}

// ExportPlaylist returns a playlist with all its tracks.
//
// Calls GET /api/playlists/{id} on the proxy.
func (y *YouTubeService) ExportPlaylist(ctx context.Context, playlistID string) (*PlaylistExport, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var yp YouTubePlaylist
	if err := y.get(ctx, "/api/playlists/{id}", &yp, map[string]string{"id": playlistID}); err != nil {
		return nil, err
	}

	playlist := yp.playlist()
	if playlist.ID == "" {
		playlist.ID = playlistID
	}

	tracks := make([]Track, len(yp.Tracks))
	for i, t := range yp.Tracks {
		tracks[i] = t.track()
	}

	return &PlaylistExport{Playlist: playlist, Tracks: tracks}, nil
}
