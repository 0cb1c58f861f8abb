// package formatter reads and writes the files exchanged between export and import runs:
// the library export (JSON), the id mapping (CSV) and the unmatched report (JSON, CSV or text).
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
)

// LoadStats counts records skipped while decoding a library export.
type LoadStats struct {
	SkippedSongs    int // keys that are not ids, duplicates, or entries missing artist/title
	SkippedRefs     int // playlist entries naming songs not in the library
	SkippedPlaylist int // playlists without a name
}

// Skipped returns the total number of skipped records.
func (s LoadStats) Skipped() int {
	return s.SkippedSongs + s.SkippedRefs + s.SkippedPlaylist
}

type songJSON struct {
	Artist    string `json:"artist"`
	Title     string `json:"title"`
	Album     string `json:"album"`
	InLibrary *bool  `json:"in_library,omitempty"`
}

type playlistJSON struct {
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

type libraryJSON struct {
	Songs     json.RawMessage `json:"songs"`
	Playlists []playlistJSON  `json:"playlists"`
}

// DecodeLibrary parses a library export.
//
// Songs keep the order of keys in the file. Malformed records are skipped and counted in the
// returned [LoadStats]; only a document that is not valid JSON is an error.
func DecodeLibrary(r io.Reader) (*models.Library, LoadStats, error) {
	var (
		doc   libraryJSON
		stats LoadStats
	)
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, stats, fmt.Errorf("%w: library export: %v", shared.ErrInvalidInput, err)
	}

	lib := models.NewLibrary()
	if len(doc.Songs) > 0 && !bytes.Equal(bytes.TrimSpace(doc.Songs), []byte("null")) {
		if err := decodeSongs(doc.Songs, lib, &stats); err != nil {
			return nil, stats, err
		}
	}

	for _, p := range doc.Playlists {
		if p.Name == "" {
			stats.SkippedPlaylist++
			continue
		}
		stats.SkippedRefs += lib.AddPlaylist(p.Name, p.Songs)
	}

	return lib, stats, nil
}

// decodeSongs walks the songs object token by token so key order survives.
func decodeSongs(raw json.RawMessage, lib *models.Library, stats *LoadStats) error {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: songs: %v", shared.ErrInvalidInput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: songs must be an object", shared.ErrInvalidInput)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: songs: %v", shared.ErrInvalidInput, err)
		}
		key, _ := tok.(string)

		var entry songJSON
		if err := dec.Decode(&entry); err != nil {
			// A value of the wrong shape is a bad record, not a bad document.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return fmt.Errorf("%w: song %q: %v", shared.ErrInvalidInput, key, err)
			}
			stats.SkippedSongs++
			continue
		}

		if !shared.IsID(key) || entry.Artist == "" || entry.Title == "" {
			stats.SkippedSongs++
			continue
		}

		song := &models.Song{
			ID:        key,
			TrackRef:  models.TrackRef{Artist: entry.Artist, Title: entry.Title, Album: entry.Album},
			InLibrary: entry.InLibrary == nil || *entry.InLibrary,
		}
		if !lib.Add(song) {
			stats.SkippedSongs++
		}
	}

	return nil
}

// orderedSongs marshals library songs as an object keyed by id, in library order.
type orderedSongs []*models.Song

func (o orderedSongs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.ID)
		if err != nil {
			return nil, err
		}
		inLibrary := s.InLibrary
		value, err := json.Marshal(songJSON{Artist: s.Artist, Title: s.Title, Album: s.Album, InLibrary: &inLibrary})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeLibrary writes lib as an indented library export.
func EncodeLibrary(w io.Writer, lib *models.Library) error {
	doc := struct {
		Songs     orderedSongs   `json:"songs"`
		Playlists []playlistJSON `json:"playlists"`
	}{
		Songs:     orderedSongs(lib.Songs),
		Playlists: make([]playlistJSON, 0, len(lib.Playlists)),
	}
	for _, p := range lib.Playlists {
		songs := p.SongIDs
		if songs == nil {
			songs = []string{}
		}
		doc.Playlists = append(doc.Playlists, playlistJSON{Name: p.Name, Songs: songs})
	}

	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return fmt.Errorf("failed to encode library: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return nil
}

// LoadLibrary reads a library export from path.
func LoadLibrary(path string) (*models.Library, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to open library export: %w", err)
	}
	defer f.Close()

	return DecodeLibrary(f)
}

// SaveLibrary writes lib to path, creating parent directories.
func SaveLibrary(path string, lib *models.Library) error {
	return writeFile(path, func(w io.Writer) error { return EncodeLibrary(w, lib) })
}

// writeFile creates path and streams content into it.
func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
