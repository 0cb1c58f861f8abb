package matcher

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/desertthunder/songshift/internal/models"
)

const (
	// ArtistMatchThreshold is the minimum artist similarity for a candidate to be considered.
	ArtistMatchThreshold = 0.5
	// RemixToken marks remixes in titles. Matching is case-sensitive.
	RemixToken = "Remix"
)

// Scorer rates candidates against a target track.
type Scorer struct {
	metric     strutil.StringMetric
	threshold  float64
	remixToken string
}

// ScorerOption configures a [Scorer].
type ScorerOption func(*Scorer)

// WithMetric sets the string similarity metric.
func WithMetric(m strutil.StringMetric) ScorerOption {
	return func(s *Scorer) {
		if m != nil {
			s.metric = m
		}
	}
}

// WithArtistThreshold sets the artist rejection threshold.
func WithArtistThreshold(t float64) ScorerOption {
	return func(s *Scorer) { s.threshold = t }
}

// WithRemixToken sets the token distinguishing remixes.
func WithRemixToken(token string) ScorerOption {
	return func(s *Scorer) { s.remixToken = token }
}

// NewScorer creates a [Scorer] using [RatcliffObershelp], [ArtistMatchThreshold] and [RemixToken] unless overridden.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		metric:     RatcliffObershelp{},
		threshold:  ArtistMatchThreshold,
		remixToken: RemixToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates c against target. The second return value is false when c is rejected.
func (s *Scorer) Score(target models.TrackRef, c models.Candidate) (float64, bool) {
	if s.remixToken != "" &&
		strings.Contains(target.Title, s.remixToken) != strings.Contains(c.Title, s.remixToken) {
		return 0, false
	}

	artistScore, ok := s.ArtistScore(target.Artist, c.Artists)
	if !ok || artistScore < s.threshold {
		return 0, false
	}

	title := strutil.Similarity(target.Title, c.Title, s.metric)
	album := strutil.Similarity(target.Album, c.Album, s.metric)
	return (artistScore + title + album) / 3, true
}

// ArtistScore returns the best similarity between artist and any of artists.
// It reports false when artists is empty.
func (s *Scorer) ArtistScore(artist string, artists []string) (float64, bool) {
	if len(artists) == 0 {
		return 0, false
	}
	best := 0.0
	for _, name := range artists {
		if sim := strutil.Similarity(artist, name, s.metric); sim > best {
			best = sim
		}
	}
	return best, true
}

// Best returns the candidate with the strictly greatest score. The first candidate wins ties.
func (s *Scorer) Best(target models.TrackRef, candidates []models.Candidate) (models.Candidate, float64, bool) {
	var (
		best      models.Candidate
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		score, ok := s.Score(target, c)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	return best, bestScore, found
}
