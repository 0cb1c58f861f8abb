// Package tasks orchestrates library migrations with real-time progress reporting.
//
// # Core Operations
//
//  1. [ImportEngine.Run] : Recreate an exported library on Spotify
//     - Loads the mapping from a [MappingStore] (CSV file or SQLite table)
//     - Resolves unmapped songs one at a time through the staged matcher
//     - Persists the mapping and writes the unmatched report
//     - Saves in-library tracks and recreates playlists in batches of at most 50 ids
//
//  2. [ExportEngine.Run] : Pull a library from a [services.LibrarySource]
//     - Saved tracks first, then playlists with their tracks
//     - One new song id per distinct service track
//
//  3. [ClearEngine.Run] : Remove every saved track and playlist
//     - Pages of 50 until the service returns an empty page
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// While resolving, Data holds an [ImportProgress] with the percentage and an ETA from [ETAEstimator].
// Updates use select with default to prevent blocking.
//
// # Rerunning Imports
//
// When the mapping store already holds entries, the import skips resolution entirely and
// reuses them. With [ImportOpts.Resume] only songs missing from the mapping are resolved.
// The mapping is always saved before any library change so failed runs can be repeated.
package tasks
