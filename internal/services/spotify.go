// Spotify implementation of [LibrarySource], [LibraryTarget] and [LibraryCleaner]
//
// Web API access goes through github.com/zmb3/spotify/v2 with an oauth2 token source
// that refreshes expired access tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultSearchLimit   = 20
	defaultRedirectURI   = "http://localhost:8000/callback"
	importedDescription  = "Imported by songshift"
	spotifyPageSizeLimit = 50
)

// SpotifyScopes are the permissions requested during authorization.
var SpotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
}

// SpotifyService talks to the Spotify Web API on behalf of one user.
type SpotifyService struct {
	config      *oauth2.Config
	httpClient  *http.Client
	baseURL     string
	limiter     *rate.Limiter
	searchLimit int
	logger      *log.Logger

	tokens oauth2.TokenSource
	client *spotify.Client

	userOnce sync.Once
	userID   string
	userErr  error
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points API calls at a different host. The URL must end with a slash.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = u }
}

// WithHTTPClient sets the transport used beneath the oauth2 client.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.httpClient = c }
}

// WithRateLimit caps API calls per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) SpotifyOption {
	return func(s *SpotifyService) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithSearchLimit sets the number of results requested per search.
func WithSearchLimit(n int) SpotifyOption {
	return func(s *SpotifyService) {
		if n > 0 {
			s.searchLimit = min(n, spotifyPageSizeLimit)
		}
	}
}

// WithServiceLogger sets the logger for request diagnostics.
func WithServiceLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(creds shared.SpotifyConfig, opts ...SpotifyOption) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Limit(10), 1),
		searchLimit: defaultSearchLimit,
		logger:      shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// OAuthConfig returns the oauth2 configuration used for authorization.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Authenticate builds the API client from token. Expired access tokens are refreshed on use.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: no spotify token, run auth first", shared.ErrNotAuthenticated)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	s.tokens = oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx, token))

	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(oauth2.NewClient(ctx, s.tokens), opts...)
	return nil
}

// Token returns the current, possibly refreshed, token for persisting.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	if s.tokens == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.tokens.Token()
}

// ready waits for the rate limiter and checks the client exists.
func (s *SpotifyService) ready(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return nil
}

// apiError wraps err as [shared.ErrAPIRequest], or as [shared.ErrNotAuthenticated] when the
// access token was rejected or could not be refreshed.
func apiError(op string, err error) error {
	var apiErr spotify.Error
	var refreshErr *oauth2.RetrieveError
	if (errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) || errors.As(err, &refreshErr) {
		return fmt.Errorf("%w: spotify %s: %w", shared.ErrNotAuthenticated, op, err)
	}
	return fmt.Errorf("%w: spotify %s: %w", shared.ErrAPIRequest, op, err)
}

func checkBatch(ids []string) error {
	if len(ids) > MaxBatchSize {
		return fmt.Errorf("%w: %d ids (max %d)", shared.ErrBatchTooLarge, len(ids), MaxBatchSize)
	}
	return nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}

func toCandidate(t spotify.FullTrack) models.Candidate {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return models.Candidate{
		ExternalID: string(t.ID),
		Title:      t.Name,
		Album:      t.Album.Name,
		Artists:    artists,
	}
}

// toTrack keeps the full artist credit, joined with ", ".
func toTrack(t spotify.FullTrack) Track {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return Track{ID: string(t.ID), Title: t.Name, Album: t.Album.Name, Artist: strings.Join(names, ", ")}
}

func toPlaylist(p spotify.SimplePlaylist) Playlist {
	return Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}
}

// Search runs a track search and returns the results as candidates.
func (s *SpotifyService) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(s.searchLimit))
	if err != nil {
		return nil, apiError("search", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	candidates := make([]models.Candidate, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		candidates = append(candidates, toCandidate(t))
	}
	s.logger.Debug("search", "query", query, "results", len(candidates))
	return candidates, nil
}

// AddToLibrary saves tracks to the user's library.
func (s *SpotifyService) AddToLibrary(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil || len(ids) == 0 {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := s.client.AddTracksToLibrary(ctx, toIDs(ids)...); err != nil {
		return apiError("add to library", err)
	}
	return nil
}

// Verify checks the token against the API by fetching the current user.
func (s *SpotifyService) Verify(ctx context.Context) error {
	if _, err := s.currentUserID(ctx); err != nil {
		return err
	}
	return nil
}

// currentUserID fetches the user id once per service.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	s.userOnce.Do(func() {
		if err := s.ready(ctx); err != nil {
			s.userErr = err
			return
		}
		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			s.userErr = apiError("current user", err)
			return
		}
		s.userID = user.ID
	})
	return s.userID, s.userErr
}

// CreatePlaylist creates a private playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string) (string, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return "", err
	}
	if err := s.ready(ctx); err != nil {
		return "", err
	}

	pl, err := s.client.CreatePlaylistForUser(ctx, userID, name, importedDescription, false, false)
	if err != nil {
		return "", apiError("create playlist", err)
	}
	return string(pl.ID), nil
}

// AddToPlaylist appends tracks to a playlist.
func (s *SpotifyService) AddToPlaylist(ctx context.Context, playlistID string, ids []string) error {
	if err := checkBatch(ids); err != nil || len(ids) == 0 {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(ids)...); err != nil {
		return apiError("add to playlist", err)
	}
	return nil
}

// SavedTracks pages through the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context) ([]Track, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(spotifyPageSizeLimit))
	if err != nil {
		return nil, apiError("saved tracks", err)
	}

	var tracks []Track
	for {
		for _, t := range page.Tracks {
			tracks = append(tracks, toTrack(t.FullTrack))
		}

		if err := s.ready(ctx); err != nil {
			return nil, err
		}
		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, apiError("saved tracks", err)
		}
	}
	return tracks, nil
}

// Playlists returns the user's playlists with their tracks. Podcast episodes are skipped.
func (s *SpotifyService) Playlists(ctx context.Context) ([]PlaylistExport, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(spotifyPageSizeLimit))
	if err != nil {
		return nil, apiError("playlists", err)
	}

	var simple []spotify.SimplePlaylist
	for {
		simple = append(simple, page.Playlists...)

		if err := s.ready(ctx); err != nil {
			return nil, err
		}
		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, apiError("playlists", err)
		}
	}

	exports := make([]PlaylistExport, 0, len(simple))
	for _, p := range simple {
		tracks, err := s.playlistTracks(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		exports = append(exports, PlaylistExport{Playlist: toPlaylist(p), Tracks: tracks})
	}
	return exports, nil
}

func (s *SpotifyService) playlistTracks(ctx context.Context, id spotify.ID) ([]Track, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.GetPlaylistItems(ctx, id, spotify.Limit(spotifyPageSizeLimit))
	if err != nil {
		return nil, apiError("playlist items", err)
	}

	var tracks []Track
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, toTrack(*item.Track.Track))
		}

		if err := s.ready(ctx); err != nil {
			return nil, err
		}
		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, apiError("playlist items", err)
		}
	}
	return tracks, nil
}

// SavedTrackPage returns the ids of the first limit saved tracks.
func (s *SpotifyService) SavedTrackPage(ctx context.Context, limit int) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(min(limit, spotifyPageSizeLimit)))
	if err != nil {
		return nil, apiError("saved tracks", err)
	}

	ids := make([]string, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		ids = append(ids, string(t.ID))
	}
	return ids, nil
}

// RemoveFromLibrary removes tracks from the user's library.
func (s *SpotifyService) RemoveFromLibrary(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil || len(ids) == 0 {
		return err
	}
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := s.client.RemoveTracksFromLibrary(ctx, toIDs(ids)...); err != nil {
		return apiError("remove from library", err)
	}
	return nil
}

// PlaylistPage returns the first limit playlists the user follows.
func (s *SpotifyService) PlaylistPage(ctx context.Context, limit int) ([]Playlist, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(min(limit, spotifyPageSizeLimit)))
	if err != nil {
		return nil, apiError("playlists", err)
	}

	playlists := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		playlists = append(playlists, toPlaylist(p))
	}
	return playlists, nil
}

// Unfollow removes a playlist from the user's library. Owned playlists are deleted.
func (s *SpotifyService) Unfollow(ctx context.Context, playlistID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := s.client.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return apiError("unfollow playlist", err)
	}
	return nil
}
