package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/desertthunder/songshift/internal/models"
	"github.com/desertthunder/songshift/internal/shared"
)

// ExportToJSON renders the unmatched report as {"songs": [...]}.
func ExportToJSON(songs []models.UnmatchedSong) ([]byte, error) {
	doc := struct {
		Songs []models.UnmatchedSong `json:"songs"`
	}{Songs: make([]models.UnmatchedSong, 0, len(songs))}

	for _, s := range songs {
		if s.InPlaylists == nil {
			s.InPlaylists = []string{}
		}
		doc.Songs = append(doc.Songs, s)
	}

	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV renders the unmatched report with columns: artist, title, album
func ExportToCSV(songs []models.UnmatchedSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"artist", "title", "album"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range songs {
		if err := writer.Write([]string{s.Artist, s.Title, s.Album}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText renders the unmatched report as a numbered plain text list
func ExportToText(songs []models.UnmatchedSong) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Unmatched: %d\n\n", len(songs))
	for i, s := range songs {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, s.TrackRef())
		for _, p := range s.InPlaylists {
			fmt.Fprintf(&buf, "   in %s\n", p)
		}
	}

	return buf.Bytes(), nil
}

// RenderReport renders songs in the given report format.
func RenderReport(format string, songs []models.UnmatchedSong) ([]byte, error) {
	switch format {
	case "", shared.ReportFormatJSON:
		return ExportToJSON(songs)
	case shared.ReportFormatCSV:
		return ExportToCSV(songs)
	case shared.ReportFormatText:
		return ExportToText(songs)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport writes the unmatched report to path in format.
func WriteReport(path, format string, songs []models.UnmatchedSong) error {
	data, err := RenderReport(format, songs)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	})
}
