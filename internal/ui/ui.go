package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songshift/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	SongListView
)

// LibrarySection is the name of the pseudo-playlist holding every saved song.
const LibrarySection = "Library"

// Model browses an exported library and its mapping.
type Model struct {
	view         ViewState
	library      *models.Library
	mapping      *models.MappingTable
	width        int
	height       int
	playlistList list.Model
	songList     list.Model
	selected     string
	help         help.Model
	keys         keyMap
}

// NewModel creates a browser over lib. A nil mapping shows every song as unmatched.
func NewModel(lib *models.Library, mapping *models.MappingTable) *Model {
	if mapping == nil {
		mapping = models.NewMappingTable()
	}
	m := &Model{
		view:    PlaylistListView,
		library: lib,
		mapping: mapping,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.playlistList = list.New(m.sections(), list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = "Library"
	m.songList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	return m
}

// sections returns the library pseudo-playlist followed by each playlist.
func (m *Model) sections() []list.Item {
	var saved []string
	for _, s := range m.library.Songs {
		if s.InLibrary {
			saved = append(saved, s.ID)
		}
	}

	items := []list.Item{m.section(LibrarySection, saved)}
	for _, pl := range m.library.Playlists {
		items = append(items, m.section(pl.Name, pl.SongIDs))
	}
	return items
}

func (m *Model) section(name string, ids []string) playlistItem {
	matched := 0
	for _, id := range ids {
		if _, ok := m.mapping.Get(id); ok {
			matched++
		}
	}
	return playlistItem{name: name, songIDs: ids, matched: matched}
}

// State returns the current view state.
func (m *Model) State() ViewState {
	return m.view
}

// Selected returns the name of the open section.
func (m *Model) Selected() string {
	return m.selected
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(m.listSize())
		m.songList.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case SongListView:
			return m.handleSongListKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
	case SongListView:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.openSection(pl)
			return m, nil
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.selected = ""
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) openSection(pl playlistItem) {
	items := make([]list.Item, 0, len(pl.songIDs))
	for _, id := range pl.songIDs {
		song, ok := m.library.Song(id)
		if !ok {
			continue
		}
		externalID, _ := m.mapping.Get(id)
		items = append(items, songItem{song: song, externalID: externalID})
	}

	w, h := m.listSize()
	m.songList = list.New(items, list.NewDefaultDelegate(), w, h)
	m.songList.Title = fmt.Sprintf("%s (%d/%d matched)", pl.name, pl.matched, len(pl.songIDs))
	m.selected = pl.name
	m.view = SongListView
}

func (m *Model) listSize() (int, int) {
	return max(0, m.width-4), max(0, m.height-8)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}
