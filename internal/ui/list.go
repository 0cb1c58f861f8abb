package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songshift/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = songItem{}
)

// playlistItem wraps a library section to implement [list.Item].
type playlistItem struct {
	name    string
	songIDs []string
	matched int
}

func (i playlistItem) FilterValue() string { return i.name }
func (i playlistItem) Title() string       { return i.name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d songs • %d matched", len(i.songIDs), i.matched)
}

// songItem wraps [models.Song] with its mapping to implement [list.Item].
type songItem struct {
	song       *models.Song
	externalID string
}

func (i songItem) FilterValue() string { return i.song.Artist + " " + i.song.Title }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	if i.externalID == "" {
		return fmt.Sprintf("%s • unmatched", desc)
	}
	return fmt.Sprintf("%s • %s", desc, i.externalID)
}
