// Package services talks to music providers on behalf of the migration engines.
//
// # Interfaces
//
// Engines depend on three narrow interfaces rather than on a provider:
//   - [LibrarySource] : reads saved tracks and playlists (export)
//   - [LibraryTarget] : searches, saves tracks and creates playlists (import)
//   - [LibraryCleaner] : pages and removes saved tracks and playlists (clear)
//
// # Spotify Implementation
//
// [SpotifyService] implements all three over github.com/zmb3/spotify/v2.
//
// Authorization uses [oauth2.Config] with the Spotify endpoints. The client built by
// Authenticate wraps a reusable token source, so expired access tokens are refreshed
// transparently and Token returns the latest one for saving back to the config file.
// Every request first waits on a [rate.Limiter].
//
// # YouTube Music Implementation
//
// [YouTubeService] implements [LibrarySource] against the FastAPI proxy wrapping ytmusicapi,
// using a resty client. The auth_file path is sent via X-Auth-File header on each request.
//
// # Error Handling
//
// Services wrap sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called, or the token was rejected
//   - [shared.ErrAPIRequest] : the provider rejected a request
//   - [shared.ErrServiceUnavailable] : the proxy could not be reached
//   - [shared.ErrBatchTooLarge] : a bulk call received more than [MaxBatchSize] ids
package services
