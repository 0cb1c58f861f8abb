package matcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher answers queries from a fixed table and records every query.
type fakeSearcher struct {
	results map[string][]models.Candidate
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]models.Candidate, error) {
	f.queries = append(f.queries, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func TestResolverPlan(t *testing.T) {
	r := NewResolver(&fakeSearcher{})
	plan := r.Plan(models.TrackRef{Artist: "The Weeknd, Daft Punk", Title: "Starboy (feat. Daft Punk)"})

	require.Len(t, plan, 3)
	assert.Equal(t, models.StageRaw, plan[0].Stage)
	assert.Equal(t, "artist:The Weeknd, Daft Punk track:Starboy (feat. Daft Punk)", plan[0].Query)
	assert.Equal(t, models.StageSanitized, plan[1].Stage)
	assert.Equal(t, "artist:Weeknd track:Starboy", plan[1].Query)
	assert.Equal(t, models.StageTitleOnly, plan[2].Stage)
	assert.Equal(t, "track:Starboy", plan[2].Query)
}

func TestResolverResolve(t *testing.T) {
	t.Run("first stage match stops searching", func(t *testing.T) {
		s := &fakeSearcher{results: map[string][]models.Candidate{
			"artist:Beyoncé track:Halo": {
				candidate("remix", "Halo (Remix)", "Halo", "Beyoncé"),
				candidate("halo", "Halo", "I Am... Sasha Fierce (Deluxe)", "Beyoncé"),
			},
		}}

		res, err := NewResolver(s).Resolve(context.Background(), halo)
		require.NoError(t, err)
		require.True(t, res.OK())
		assert.Equal(t, "halo", res.ExternalID())
		assert.Equal(t, models.StageRaw, res.Stage())
		assert.Len(t, s.queries, 1)
	})

	t.Run("title only stage", func(t *testing.T) {
		target := models.TrackRef{Artist: "The Weeknd", Title: "Blinding Lights (feat. Nobody)", Album: "After Hours"}
		s := &fakeSearcher{results: map[string][]models.Candidate{
			"track:Blinding Lights": {candidate("bl", "Blinding Lights", "After Hours", "The Weeknd")},
		}}

		res, err := NewResolver(s).Resolve(context.Background(), target)
		require.NoError(t, err)
		require.True(t, res.OK())
		assert.Equal(t, "bl", res.ExternalID())
		assert.Equal(t, models.StageTitleOnly, res.Stage())
		assert.Equal(t, []string{
			"artist:The Weeknd track:Blinding Lights (feat. Nobody)",
			"artist:Weeknd track:Blinding Lights",
			"track:Blinding Lights",
		}, s.queries)
	})

	t.Run("search error falls through to next stage", func(t *testing.T) {
		target := models.TrackRef{Artist: "The Weeknd", Title: "Starboy", Album: "Starboy"}
		s := &fakeSearcher{
			errs: map[string]error{"artist:The Weeknd track:Starboy": errors.New("503")},
			results: map[string][]models.Candidate{
				"artist:Weeknd track:Starboy": {candidate("sb", "Starboy", "Starboy", "The Weeknd", "Daft Punk")},
			},
		}

		res, err := NewResolver(s).Resolve(context.Background(), target)
		require.NoError(t, err)
		require.True(t, res.OK())
		assert.Equal(t, "sb", res.ExternalID())
		assert.Equal(t, models.StageSanitized, res.Stage())
		assert.Len(t, s.queries, 2)
	})

	t.Run("unmatched after three searches", func(t *testing.T) {
		s := &fakeSearcher{results: map[string][]models.Candidate{
			"track:Halo": {candidate("wrong", "Halo", "I Am... Sasha Fierce", "Metallica")},
		}}

		res, err := NewResolver(s).Resolve(context.Background(), halo)
		require.NoError(t, err)
		assert.False(t, res.OK())
		assert.Equal(t, models.StageNone, res.Stage())
		assert.Empty(t, res.ExternalID())
		assert.Contains(t, res.Reason(), "1 results considered")
		assert.Len(t, s.queries, 3)
	})

	t.Run("canceled context issues no searches", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &fakeSearcher{}
		res, err := NewResolver(s).Resolve(ctx, halo)
		require.NoError(t, err)
		assert.False(t, res.OK())
		assert.Contains(t, res.Reason(), "interrupted")
		assert.Empty(t, s.queries)
	})

	t.Run("rejected token ends resolution", func(t *testing.T) {
		rejected := fmt.Errorf("%w: spotify search: token expired", shared.ErrNotAuthenticated)
		s := &fakeSearcher{errs: map[string]error{"artist:Beyoncé track:Halo": rejected}}

		res, err := NewResolver(s).Resolve(context.Background(), halo)
		require.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.False(t, res.OK())
		assert.Len(t, s.queries, 1)
	})

	t.Run("searcher func adapter", func(t *testing.T) {
		calls := 0
		fn := SearcherFunc(func(_ context.Context, q string) ([]models.Candidate, error) {
			calls++
			return []models.Candidate{candidate("halo", "Halo", "I Am... Sasha Fierce", "Beyoncé")}, nil
		})

		res, err := NewResolver(fn).Resolve(context.Background(), halo)
		require.NoError(t, err)
		assert.True(t, res.OK())
		assert.InDelta(t, 1.0, res.Score(), 1e-9)
		assert.Equal(t, 1, calls)
	})
}
