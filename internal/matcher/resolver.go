package matcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
)

// Searcher runs a text query against a remote catalog.
//
// Queries use the field syntax "artist:<a> track:<t>" or "track:<t>".
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Candidate, error)
}

// SearcherFunc adapts a function to [Searcher].
type SearcherFunc func(ctx context.Context, query string) ([]models.Candidate, error)

func (f SearcherFunc) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	return f(ctx, query)
}

// ArtistTrackQuery builds a structured artist and track query.
func ArtistTrackQuery(artist, title string) string {
	return fmt.Sprintf("artist:%s track:%s", artist, title)
}

// TrackQuery builds a title-only query.
func TrackQuery(title string) string {
	return fmt.Sprintf("track:%s", title)
}

// Stage is one planned search of a resolution.
type Stage struct {
	Stage models.MatchStage
	Query string
}

// Resolver finds the external id of a track through staged searches.
type Resolver struct {
	searcher  Searcher
	sanitizer *Sanitizer
	scorer    *Scorer
	logger    *log.Logger
}

// ResolverOption configures a [Resolver].
type ResolverOption func(*Resolver)

// WithSanitizer replaces the default [Sanitizer].
func WithSanitizer(s *Sanitizer) ResolverOption {
	return func(r *Resolver) { r.sanitizer = s }
}

// WithScorer replaces the default [Scorer].
func WithScorer(s *Scorer) ResolverOption {
	return func(r *Resolver) { r.scorer = s }
}

// WithLogger sets the logger used for search failures and match decisions.
func WithLogger(l *log.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a [Resolver] searching with searcher.
func NewResolver(searcher Searcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		searcher:  searcher,
		sanitizer: NewSanitizer(DefaultRules()),
		scorer:    NewScorer(),
		logger:    shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan returns the three searches Resolve issues for t, in order.
func (r *Resolver) Plan(t models.TrackRef) []Stage {
	title := r.sanitizer.Title(t.Title)
	return []Stage{
		{Stage: models.StageRaw, Query: ArtistTrackQuery(t.Artist, t.Title)},
		{Stage: models.StageSanitized, Query: ArtistTrackQuery(r.sanitizer.Artist(t.Artist), title)},
		{Stage: models.StageTitleOnly, Query: TrackQuery(title)},
	}
}

// Resolve searches for t stage by stage and returns the first acceptable match.
//
// Every stage scores against t as given. A search error is logged and treated as an empty
// result, except [shared.ErrNotAuthenticated], which ends resolution and is returned.
// Resolution stops early when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, t models.TrackRef) (models.MatchResult, error) {
	considered := 0
	for _, stage := range r.Plan(t) {
		if err := ctx.Err(); err != nil {
			return models.Unmatched(fmt.Sprintf("resolution interrupted: %v", err)), nil
		}

		candidates, err := r.searcher.Search(ctx, stage.Query)
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return models.Unmatched("not authenticated"), err
		}
		if err != nil {
			r.logger.Warn("search failed", "stage", stage.Stage, "query", stage.Query, "error", err)
			candidates = nil
		}
		considered += len(candidates)

		best, score, ok := r.scorer.Best(t, candidates)
		if !ok {
			r.logger.Debug("no acceptable candidate", "stage", stage.Stage, "query", stage.Query, "candidates", len(candidates))
			continue
		}

		r.logger.Debug("matched", "track", t, "candidate", best, "stage", stage.Stage, "score", score)
		return models.Matched(best.ExternalID, stage.Stage, score), nil
	}

	return models.Unmatched(fmt.Sprintf("no acceptable candidate in 3 searches (%d results considered)", considered)), nil
}
