package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/songshift/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// ImportProgress is carried in [ProgressUpdate.Data] while tracks are resolved.
type ImportProgress struct {
	Done     int
	Total    int
	Percent  float64
	ETA      time.Duration
	ETAKnown bool
	Result   models.MatchResult
}

// Operation phase enumeration
type Phase int

const (
	LoadMapping Phase = iota
	ResolveTracks
	SaveMapping
	WriteReport
	AddToLibrary
	CreatePlaylists
	FetchSaved
	FetchPlaylists
	RemoveTracks
	UnfollowPlaylists
)

func (p Phase) String() string {
	switch p {
	case LoadMapping:
		return "load_mapping"
	case ResolveTracks:
		return "resolve_tracks"
	case SaveMapping:
		return "save_mapping"
	case WriteReport:
		return "write_report"
	case AddToLibrary:
		return "add_to_library"
	case CreatePlaylists:
		return "create_playlists"
	case FetchSaved:
		return "fetch_saved"
	case FetchPlaylists:
		return "fetch_playlists"
	case RemoveTracks:
		return "remove_tracks"
	case UnfollowPlaylists:
		return "unfollow_playlists"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadMappingUpdate(source string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadMapping,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d mappings from %s", n, source),
	}
}

func resolveUpdate(p ImportProgress, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    p.Done,
		Total:   p.Total,
		Message: fmt.Sprintf("[%d/%d] %s", p.Done, p.Total, song.TrackRef),
		Data:    p,
	}
}

func saveMappingUpdate(target string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveMapping,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved %d mappings to %s", n, target),
	}
}

func writeReportUpdate(path string, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %d unmatched songs to %s", n, path),
	}
}

func addLibraryUpdate(step, total, n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddToLibrary,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saving %d tracks to library...", step, total, n),
	}
}

func createPlaylistUpdate(step, total int, name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Created playlist: %s (%d tracks)", step, total, name, tracks),
	}
}

func fetchSavedUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSaved,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d saved tracks", n),
	}
}

func fetchPlaylistUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exported playlist: %s (%d songs)", step, total, pl.Name, len(pl.SongIDs)),
		Data:    pl,
	}
}

func removeTracksUpdate(removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveTracks,
		Step:    removed,
		Message: fmt.Sprintf("Removed %d saved tracks", removed),
	}
}

func unfollowUpdate(removed int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UnfollowPlaylists,
		Step:    removed,
		Message: fmt.Sprintf("Removed playlist: %s", name),
	}
}
