// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"testing"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
)

// MockPlaylist is a playlist created through [MockService.CreatePlaylist].
type MockPlaylist struct {
	ID     string
	Name   string
	Tracks []string
}

// MockService is an in-memory music service implementing [services.LibrarySource],
// [services.LibraryTarget] and [services.LibraryCleaner].
//
// Errors set in Fail are returned by the method of the same name.
type MockService struct {
	Catalog   map[string][]models.Candidate // search query -> results
	Saved     []services.Track
	Exports   []services.PlaylistExport
	Library   []string // saved track ids
	Followed  []services.Playlist
	Created   []*MockPlaylist
	Fail      map[string]error
	KeepSaved bool // RemoveFromLibrary succeeds without removing anything

	Queries       []string
	LibraryCalls  [][]string
	PlaylistCalls [][]string
}

var (
	_ services.LibrarySource  = (*MockService)(nil)
	_ services.LibraryTarget  = (*MockService)(nil)
	_ services.LibraryCleaner = (*MockService)(nil)
)

func (m *MockService) Name() string { return "mock" }

func (m *MockService) fail(method string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail[method]
}

func checkBatch(ids []string) error {
	if len(ids) > services.MaxBatchSize {
		return fmt.Errorf("%w: %d ids", shared.ErrBatchTooLarge, len(ids))
	}
	return nil
}

func (m *MockService) SavedTracks(ctx context.Context) ([]services.Track, error) {
	if err := m.fail("SavedTracks"); err != nil {
		return nil, err
	}
	return m.Saved, nil
}

func (m *MockService) Playlists(ctx context.Context) ([]services.PlaylistExport, error) {
	if err := m.fail("Playlists"); err != nil {
		return nil, err
	}
	return m.Exports, nil
}

func (m *MockService) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	m.Queries = append(m.Queries, query)
	if err := m.fail("Search"); err != nil {
		return nil, err
	}
	return m.Catalog[query], nil
}

func (m *MockService) AddToLibrary(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	if err := m.fail("AddToLibrary"); err != nil {
		return err
	}
	m.LibraryCalls = append(m.LibraryCalls, slices.Clone(ids))
	m.Library = append(m.Library, ids...)
	return nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string) (string, error) {
	if err := m.fail("CreatePlaylist"); err != nil {
		return "", err
	}
	pl := &MockPlaylist{ID: fmt.Sprintf("playlist-%d", len(m.Created)+1), Name: name}
	m.Created = append(m.Created, pl)
	return pl.ID, nil
}

func (m *MockService) AddToPlaylist(ctx context.Context, playlistID string, ids []string) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	if err := m.fail("AddToPlaylist"); err != nil {
		return err
	}
	for _, pl := range m.Created {
		if pl.ID == playlistID {
			pl.Tracks = append(pl.Tracks, ids...)
			m.PlaylistCalls = append(m.PlaylistCalls, slices.Clone(ids))
			return nil
		}
	}
	return fmt.Errorf("%w: unknown playlist %s", shared.ErrAPIRequest, playlistID)
}

func (m *MockService) SavedTrackPage(ctx context.Context, limit int) ([]string, error) {
	if err := m.fail("SavedTrackPage"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Library[:min(limit, len(m.Library))]), nil
}

func (m *MockService) RemoveFromLibrary(ctx context.Context, ids []string) error {
	if err := checkBatch(ids); err != nil {
		return err
	}
	if err := m.fail("RemoveFromLibrary"); err != nil {
		return err
	}
	if m.KeepSaved {
		return nil
	}
	m.Library = slices.DeleteFunc(m.Library, func(id string) bool { return slices.Contains(ids, id) })
	return nil
}

func (m *MockService) PlaylistPage(ctx context.Context, limit int) ([]services.Playlist, error) {
	if err := m.fail("PlaylistPage"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Followed[:min(limit, len(m.Followed))]), nil
}

func (m *MockService) Unfollow(ctx context.Context, playlistID string) error {
	if err := m.fail("Unfollow"); err != nil {
		return err
	}
	m.Followed = slices.DeleteFunc(m.Followed, func(p services.Playlist) bool { return p.ID == playlistID })
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
