package models

import (
	"fmt"
	"strings"
)

// TrackRef describes a song by its textual metadata. Album may be empty.
type TrackRef struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Album  string `json:"album"`
}

func (t TrackRef) String() string {
	if t.Album == "" {
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	}
	return fmt.Sprintf("%s - %s (%s)", t.Artist, t.Title, t.Album)
}

// Candidate is a track returned by a catalog search.
type Candidate struct {
	ExternalID string
	Title      string
	Album      string
	Artists    []string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s - %s [%s]", strings.Join(c.Artists, ", "), c.Title, c.ExternalID)
}

// MatchStage identifies the query strategy that produced a match.
type MatchStage int

const (
	StageNone      MatchStage = iota
	StageRaw                  // artist + title as given
	StageSanitized            // sanitized artist + sanitized title
	StageTitleOnly            // sanitized title only
)

func (s MatchStage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageSanitized:
		return "sanitized"
	case StageTitleOnly:
		return "title_only"
	default:
		return "none"
	}
}

// MatchResult is the outcome of resolving one [TrackRef].
//
// Values are built with [Matched] or [Unmatched] and never change afterwards.
type MatchResult struct {
	externalID string
	stage      MatchStage
	score      float64
	reason     string
}

// Matched returns a successful result.
func Matched(externalID string, stage MatchStage, score float64) MatchResult {
	return MatchResult{externalID: externalID, stage: stage, score: score}
}

// Unmatched returns a failed result with a diagnostic reason.
func Unmatched(reason string) MatchResult {
	return MatchResult{reason: reason}
}

func (m MatchResult) OK() bool           { return m.externalID != "" }
func (m MatchResult) ExternalID() string { return m.externalID }
func (m MatchResult) Stage() MatchStage  { return m.stage }
func (m MatchResult) Score() float64     { return m.score }
func (m MatchResult) Reason() string     { return m.reason }

func (m MatchResult) String() string {
	if m.OK() {
		return fmt.Sprintf("matched %s (stage=%s score=%.3f)", m.externalID, m.stage, m.score)
	}
	return fmt.Sprintf("unmatched: %s", m.reason)
}

// UnmatchedSong is one entry of the unmatched report.
type UnmatchedSong struct {
	Artist      string   `json:"artist"`
	Title       string   `json:"title"`
	Album       string   `json:"album"`
	InPlaylists []string `json:"in_playlists"`
}

// TrackRef returns the song's metadata.
func (u UnmatchedSong) TrackRef() TrackRef {
	return TrackRef{Artist: u.Artist, Title: u.Title, Album: u.Album}
}

// NewUnmatchedSong builds a report entry for s.
func NewUnmatchedSong(s *Song) UnmatchedSong {
	playlists := append([]string{}, s.Playlists...)
	return UnmatchedSong{Artist: s.Artist, Title: s.Title, Album: s.Album, InPlaylists: playlists}
}
