package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
	th "github.com/desertthunder/songshift/internal/testing"
)

const (
	idHalo    = "0b1f2e4a-6c2d-4f4e-9d7a-1a2b3c4d5e6f"
	idStarboy = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
	idCreep   = "11111111-2222-4333-8444-555555555555"
)

const libraryFixture = `{
  "songs": {
    "` + idStarboy + `": {"artist": "The Weeknd", "title": "Starboy", "album": "Starboy"},
    "not-a-uuid": {"artist": "Nobody", "title": "Nothing", "album": ""},
    "` + idHalo + `": {"artist": "Beyoncé", "title": "Halo", "album": "I Am... Sasha Fierce", "in_library": false},
    "` + idCreep + `": {"artist": "", "title": "Creep", "album": "Pablo Honey"}
  },
  "playlists": [
    {"name": "Favorites", "songs": ["` + idHalo + `", "` + idCreep + `", "` + idStarboy + `"]},
    {"name": "", "songs": []}
  ]
}`

func TestDecodeLibrary(t *testing.T) {
	t.Run("preserves key order and skips bad records", func(t *testing.T) {
		lib, stats, err := DecodeLibrary(strings.NewReader(libraryFixture))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}

		if lib.Len() != 2 {
			t.Fatalf("expected 2 songs, got %d", lib.Len())
		}
		if lib.Songs[0].ID != idStarboy || lib.Songs[1].ID != idHalo {
			t.Errorf("expected file order, got %s, %s", lib.Songs[0].ID, lib.Songs[1].ID)
		}
		if stats.SkippedSongs != 2 {
			t.Errorf("expected 2 skipped songs, got %d", stats.SkippedSongs)
		}
		if stats.SkippedRefs != 1 {
			t.Errorf("expected 1 skipped playlist ref, got %d", stats.SkippedRefs)
		}
		if stats.SkippedPlaylist != 1 {
			t.Errorf("expected 1 skipped playlist, got %d", stats.SkippedPlaylist)
		}
		if stats.Skipped() != 4 {
			t.Errorf("expected 4 skipped records, got %d", stats.Skipped())
		}
	})

	t.Run("in_library defaults to true", func(t *testing.T) {
		lib, _, err := DecodeLibrary(strings.NewReader(libraryFixture))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}

		starboy, _ := lib.Song(idStarboy)
		if !starboy.InLibrary {
			t.Error("expected absent in_library to default to true")
		}
		halo, _ := lib.Song(idHalo)
		if halo.InLibrary {
			t.Error("expected explicit in_library false to be kept")
		}
	})

	t.Run("playlists reference known songs", func(t *testing.T) {
		lib, _, err := DecodeLibrary(strings.NewReader(libraryFixture))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}

		if len(lib.Playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(lib.Playlists))
		}
		got := lib.Playlists[0].SongIDs
		if len(got) != 2 || got[0] != idHalo || got[1] != idStarboy {
			t.Errorf("expected [%s %s], got %v", idHalo, idStarboy, got)
		}

		halo, _ := lib.Song(idHalo)
		if len(halo.Playlists) != 1 || halo.Playlists[0] != "Favorites" {
			t.Errorf("expected song to record its playlist, got %v", halo.Playlists)
		}
	})

	t.Run("wrongly shaped song value is skipped", func(t *testing.T) {
		doc := `{"songs": {"` + idHalo + `": "Halo", "` + idCreep + `": {"artist": "Radiohead", "title": "Creep"}}}`
		lib, stats, err := DecodeLibrary(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}
		if lib.Len() != 1 || stats.SkippedSongs != 1 {
			t.Errorf("expected 1 song and 1 skipped, got %d and %d", lib.Len(), stats.SkippedSongs)
		}
	})

	t.Run("missing sections", func(t *testing.T) {
		lib, stats, err := DecodeLibrary(strings.NewReader(`{}`))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}
		if lib.Len() != 0 || stats.Skipped() != 0 {
			t.Errorf("expected empty library, got %d songs", lib.Len())
		}
	})

	t.Run("invalid documents", func(t *testing.T) {
		for _, doc := range []string{`not json`, `{"songs": []}`, `{"songs": {"a": `} {
			_, _, err := DecodeLibrary(strings.NewReader(doc))
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %q, got %v", doc, err)
			}
		}
	})
}

func TestEncodeLibrary(t *testing.T) {
	lib := models.NewLibrary()
	lib.Add(&models.Song{ID: idStarboy, TrackRef: models.TrackRef{Artist: "The Weeknd", Title: "Starboy"}, InLibrary: true})
	lib.Add(&models.Song{ID: idHalo, TrackRef: models.TrackRef{Artist: "Beyoncé", Title: "Halo", Album: "I Am... Sasha Fierce"}})
	lib.AddPlaylist("Favorites", []string{idHalo})
	lib.AddPlaylist("Empty", nil)

	var buf bytes.Buffer
	if err := EncodeLibrary(&buf, lib); err != nil {
		t.Fatalf("EncodeLibrary failed: %v", err)
	}
	output := buf.String()

	t.Run("keys in library order", func(t *testing.T) {
		if strings.Index(output, idStarboy) > strings.Index(output, idHalo) {
			t.Errorf("expected %s before %s in output", idStarboy, idHalo)
		}
	})

	t.Run("in_library written explicitly", func(t *testing.T) {
		if !strings.Contains(output, `"in_library": false`) {
			t.Errorf("expected in_library false in output, got: %s", output)
		}
	})

	t.Run("empty playlists encode as arrays", func(t *testing.T) {
		var doc map[string]any
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		playlists := doc["playlists"].([]any)
		empty := playlists[1].(map[string]any)
		if _, ok := empty["songs"].([]any); !ok {
			t.Errorf("expected songs array, got %v", empty["songs"])
		}
	})

	t.Run("round trip", func(t *testing.T) {
		decoded, stats, err := DecodeLibrary(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("DecodeLibrary failed: %v", err)
		}
		if stats.Skipped() != 0 {
			t.Errorf("expected nothing skipped, got %+v", stats)
		}
		if decoded.Len() != 2 || decoded.Songs[0].ID != idStarboy {
			t.Errorf("expected songs in order, got %d songs", decoded.Len())
		}
		halo, _ := decoded.Song(idHalo)
		if halo.InLibrary {
			t.Error("expected in_library false to survive")
		}
	})
}

func TestLibraryFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "library.json")

	lib := models.NewLibrary()
	lib.Add(&models.Song{ID: idHalo, TrackRef: models.TrackRef{Artist: "Beyoncé", Title: "Halo"}, InLibrary: true})

	if err := SaveLibrary(path, lib); err != nil {
		t.Fatalf("SaveLibrary failed: %v", err)
	}
	th.AssertFileExists(t, path)

	loaded, _, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("expected 1 song, got %d", loaded.Len())
	}

	if _, _, err := LoadLibrary(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMappings(t *testing.T) {
	t.Run("ReadMappings", func(t *testing.T) {
		input := "a,spotify1\nb,spotify2\n\nc\nd,,\na,other\ne,spotify3\n"
		table, skipped, err := ReadMappings(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadMappings failed: %v", err)
		}

		if table.Len() != 3 {
			t.Errorf("expected 3 entries, got %d", table.Len())
		}
		if skipped != 3 {
			t.Errorf("expected 3 skipped rows, got %d", skipped)
		}
		if id, _ := table.Get("a"); id != "spotify1" {
			t.Errorf("expected first mapping to win, got %s", id)
		}
	})

	t.Run("WriteMappings", func(t *testing.T) {
		table := models.NewMappingTable()
		_ = table.Put("b", "spotify2")
		_ = table.Put("a", "spotify1")

		var buf bytes.Buffer
		if err := WriteMappings(&buf, table); err != nil {
			t.Fatalf("WriteMappings failed: %v", err)
		}

		expected := "b,spotify2\na,spotify1\n"
		if buf.String() != expected {
			t.Errorf("expected %q, got %q", expected, buf.String())
		}
	})

	t.Run("WriteMappings error", func(t *testing.T) {
		table := models.NewMappingTable()
		_ = table.Put("a", "spotify1")

		if err := WriteMappings(&th.FWriter{}, table); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("CSVMappingStore", func(t *testing.T) {
		ctx := context.Background()
		store := NewCSVMappingStore(filepath.Join(t.TempDir(), "mappings.csv"))

		empty, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load of missing file failed: %v", err)
		}
		if empty.Len() != 0 {
			t.Errorf("expected empty table, got %d entries", empty.Len())
		}

		table := models.NewMappingTable()
		_ = table.Put(idHalo, "spotify1")
		if err := store.Save(ctx, table); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		content := th.MustReadFile(t, store.Path)
		if content != idHalo+",spotify1\n" {
			t.Errorf("unexpected file content: %q", content)
		}

		loaded, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if id, ok := loaded.Get(idHalo); !ok || id != "spotify1" {
			t.Errorf("expected spotify1, got %s", id)
		}
	})
}

func TestReports(t *testing.T) {
	songs := []models.UnmatchedSong{
		{Artist: "Beyoncé", Title: "Halo", Album: "I Am... Sasha Fierce", InPlaylists: []string{"Favorites"}},
		{Artist: "Radiohead", Title: "Creep, Acoustic", Album: ""},
	}

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(songs)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc struct {
			Songs []models.UnmatchedSong `json:"songs"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(doc.Songs))
		}
		if doc.Songs[0].InPlaylists[0] != "Favorites" {
			t.Errorf("expected in_playlists to be kept, got %v", doc.Songs[0].InPlaylists)
		}
		if !strings.Contains(string(data), `"in_playlists": []`) {
			t.Errorf("expected empty in_playlists array, got: %s", data)
		}
	})

	t.Run("ExportToJSON empty", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"songs": []`) {
			t.Errorf("expected empty songs array, got: %s", data)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(songs)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		expected := "artist,title,album\nBeyoncé,Halo,I Am... Sasha Fierce\nRadiohead,\"Creep, Acoustic\",\n"
		if string(data) != expected {
			t.Errorf("expected %q, got %q", expected, string(data))
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(songs)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "Unmatched: 2") {
			t.Errorf("missing count, got: %s", output)
		}
		if !strings.Contains(output, "1. Beyoncé - Halo (I Am... Sasha Fierce)") {
			t.Errorf("missing first entry, got: %s", output)
		}
		if !strings.Contains(output, "in Favorites") {
			t.Errorf("missing playlist line, got: %s", output)
		}
	})

	t.Run("WriteReport", func(t *testing.T) {
		dir := t.TempDir()
		tc := []struct {
			format string
			prefix string
		}{
			{format: shared.ReportFormatJSON, prefix: "{"},
			{format: shared.ReportFormatCSV, prefix: "artist,title,album"},
			{format: shared.ReportFormatText, prefix: "Unmatched"},
		}

		for _, tt := range tc {
			path := filepath.Join(dir, "unmatched."+tt.format)
			if err := WriteReport(path, tt.format, songs); err != nil {
				t.Fatalf("WriteReport(%s) failed: %v", tt.format, err)
			}
			if content := th.MustReadFile(t, path); !strings.HasPrefix(content, tt.prefix) {
				t.Errorf("expected %s report to start with %q, got %q", tt.format, tt.prefix, content)
			}
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "unmatched.xml")
		err := WriteReport(path, "xml", songs)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("expected no file for unknown format")
		}
	})
}
