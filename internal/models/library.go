package models

import "fmt"

// Song is a library entry keyed by a source id.
type Song struct {
	ID string
	TrackRef
	InLibrary bool
	Playlists []string // names of playlists containing the song
}

// Playlist is an ordered list of song ids.
type Playlist struct {
	Name    string
	SongIDs []string
}

// Library holds songs in source order plus playlists referencing them.
type Library struct {
	Songs     []*Song
	Playlists []Playlist
	index     map[string]*Song
}

// NewLibrary creates an empty [Library].
func NewLibrary() *Library {
	return &Library{index: make(map[string]*Song)}
}

// Add appends s unless its id is already present.
func (l *Library) Add(s *Song) bool {
	if l.index == nil {
		l.index = make(map[string]*Song)
	}
	if _, ok := l.index[s.ID]; ok {
		return false
	}
	l.index[s.ID] = s
	l.Songs = append(l.Songs, s)
	return true
}

// Song looks up a song by id.
func (l *Library) Song(id string) (*Song, bool) {
	s, ok := l.index[id]
	return s, ok
}

// AddPlaylist appends a playlist, keeping only ids present in the library.
//
// Each kept song records the playlist name. Returns the number of dropped ids.
func (l *Library) AddPlaylist(name string, songIDs []string) int {
	p := Playlist{Name: name, SongIDs: make([]string, 0, len(songIDs))}
	dropped := 0
	for _, id := range songIDs {
		s, ok := l.index[id]
		if !ok {
			dropped++
			continue
		}
		p.SongIDs = append(p.SongIDs, id)
		s.Playlists = appendUnique(s.Playlists, name)
	}
	l.Playlists = append(l.Playlists, p)
	return dropped
}

// Len returns the number of songs.
func (l *Library) Len() int {
	return len(l.Songs)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// MappingTable maps source song ids to external track ids.
//
// Entries are only ever added; the first value recorded for a key wins.
type MappingTable struct {
	entries map[string]string
	order   []string
}

// NewMappingTable creates an empty [MappingTable].
func NewMappingTable() *MappingTable {
	return &MappingTable{entries: make(map[string]string)}
}

// Put records sourceID -> externalID. Returns an error if sourceID already maps elsewhere.
func (m *MappingTable) Put(sourceID, externalID string) error {
	if sourceID == "" || externalID == "" {
		return fmt.Errorf("mapping requires both ids, got %q -> %q", sourceID, externalID)
	}
	if existing, ok := m.entries[sourceID]; ok {
		if existing == externalID {
			return nil
		}
		return fmt.Errorf("%s already mapped to %s", sourceID, existing)
	}
	m.entries[sourceID] = externalID
	m.order = append(m.order, sourceID)
	return nil
}

// Get returns the external id for sourceID.
func (m *MappingTable) Get(sourceID string) (string, bool) {
	id, ok := m.entries[sourceID]
	return id, ok
}

// Len returns the number of entries.
func (m *MappingTable) Len() int {
	return len(m.order)
}

// Keys returns source ids in insertion order.
func (m *MappingTable) Keys() []string {
	return append([]string(nil), m.order...)
}
