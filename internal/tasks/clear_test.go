package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
	th "github.com/desertthunder/songshift/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("track-%d", i)
	}
	return ids
}

func followed(n int) []services.Playlist {
	out := make([]services.Playlist, n)
	for i := range out {
		out[i] = services.Playlist{ID: fmt.Sprintf("pl-%d", i), Name: fmt.Sprintf("Playlist %d", i)}
	}
	return out
}

func TestClearEngine_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("loops until pages are empty", func(t *testing.T) {
		svc := &th.MockService{Library: savedIDs(120), Followed: followed(55)}

		result, err := NewClearEngine(svc, nil).Run(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, 120, result.TracksRemoved)
		assert.Equal(t, 55, result.PlaylistsRemoved)
		assert.Empty(t, svc.Library)
		assert.Empty(t, svc.Followed)
	})

	t.Run("empty library", func(t *testing.T) {
		result, err := NewClearEngine(&th.MockService{}, nil).Run(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, ClearResult{}, *result)
	})

	t.Run("non-shrinking library fails", func(t *testing.T) {
		svc := &th.MockService{Library: savedIDs(3), KeepSaved: true}

		result, err := NewClearEngine(svc, nil).Run(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Equal(t, 3, result.TracksRemoved)
	})

	t.Run("service errors", func(t *testing.T) {
		boom := errors.New("boom")
		for _, method := range []string{"SavedTrackPage", "RemoveFromLibrary", "PlaylistPage", "Unfollow"} {
			t.Run(method, func(t *testing.T) {
				svc := &th.MockService{Library: savedIDs(1), Followed: followed(1), Fail: map[string]error{method: boom}}
				_, err := NewClearEngine(svc, nil).Run(ctx, nil)
				assert.ErrorIs(t, err, boom)
			})
		}
	})

	t.Run("progress", func(t *testing.T) {
		svc := &th.MockService{Library: savedIDs(60), Followed: followed(2)}
		progress := make(chan ProgressUpdate, 10)

		_, err := NewClearEngine(svc, nil).Run(ctx, progress)
		require.NoError(t, err)
		close(progress)

		var messages []string
		for u := range progress {
			messages = append(messages, u.Message)
		}
		assert.Equal(t, []string{
			"Removed 50 saved tracks",
			"Removed 60 saved tracks",
			"Removed playlist: Playlist 0",
			"Removed playlist: Playlist 1",
		}, messages)
	})

	t.Run("nil cleaner", func(t *testing.T) {
		_, err := NewClearEngine(nil, nil).Run(ctx, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}
