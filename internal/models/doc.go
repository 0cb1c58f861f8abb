// Package models defines the domain types shared by the matcher, the migration driver and persistence.
//
// The package contains two categories of types:
//
// 1. Value types describing music and match outcomes
//   - [TrackRef] : artist/title/album description of a song
//   - [Candidate] : a search result returned by the destination service
//   - [MatchResult] : Matched (external id, stage, score) or Unmatched (reason)
//   - [Library] : songs and playlists read from a library export
//   - [MappingTable] : source song id to external track id, append-only
//
// 2. Persistent entities implementing [Model]
//   - [Run] : one import run with counts and status
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
