package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"springboard/client"
)

const (
	CatalogFallbackText = "Welcome to SRAC"
	NoDescriptionText   = "No description."
)

type CatalogEntry struct {
	API          client.APISummary
	LikeInFlight bool
}

// CatalogState is the API catalog sidebar. It keeps its own accordion,
// independent of the result cards.
type CatalogState struct {
	Loading bool
	Failed  bool
	Entries []*CatalogEntry

	// Expanded is the index of the open entry, -1 when none.
	Expanded int
}

// Description falls back to a fixed text for APIs without one.
func (e *CatalogEntry) Description() string {
	if e.API.Description == "" {
		return NoDescriptionText
	}
	return e.API.Description
}

// RefreshCatalog loads the API list.
func (m *Model) RefreshCatalog() tea.Cmd {
	m.Catalog.Loading = true
	backend := m.Backend
	return func() tea.Msg {
		apis, err := backend.ListAPIs(context.Background())
		return CatalogLoadedMsg{APIs: apis, Err: err}
	}
}

func (m *Model) HandleCatalog(msg CatalogLoadedMsg) {
	m.Catalog.Loading = false
	m.Catalog.Expanded = -1

	if msg.Err != nil {
		m.Logger.Warn().Err(msg.Err).Msg("failed to load APIs")
		m.Catalog.Failed = true
		m.Catalog.Entries = nil
		return
	}

	m.Catalog.Failed = false
	m.Catalog.Entries = make([]*CatalogEntry, 0, len(msg.APIs))
	for _, api := range msg.APIs {
		m.Catalog.Entries = append(m.Catalog.Entries, &CatalogEntry{API: api})
	}
}

// ToggleCatalogEntry opens entry i and closes the others, or closes i.
func (m *Model) ToggleCatalogEntry(i int) {
	if i < 0 || i >= len(m.Catalog.Entries) {
		return
	}
	if m.Catalog.Expanded == i {
		m.Catalog.Expanded = -1
		return
	}
	m.Catalog.Expanded = i
}

// LikeCatalogEntry likes the API at index i.
func (m *Model) LikeCatalogEntry(i int) tea.Cmd {
	if i < 0 || i >= len(m.Catalog.Entries) {
		return nil
	}
	entry := m.Catalog.Entries[i]
	if entry.LikeInFlight {
		return nil
	}
	entry.LikeInFlight = true
	id := entry.API.ID

	backend := m.Backend
	return func() tea.Msg {
		resp, err := backend.LikeAPI(context.Background(), id.String())
		if err != nil {
			return CatalogLikedMsg{ID: id, Err: err}
		}
		return CatalogLikedMsg{ID: id, Likes: *resp.Likes}
	}
}

func (m *Model) HandleCatalogLiked(msg CatalogLikedMsg) {
	var entry *CatalogEntry
	for _, e := range m.Catalog.Entries {
		if e.API.ID == msg.ID {
			entry = e
			break
		}
	}
	if entry == nil {
		return
	}
	entry.LikeInFlight = false

	if msg.Err != nil {
		m.alert(LikeFailedText, msg.Err)
		return
	}
	entry.API.Likes = msg.Likes
	entry.API.Liked = true
}
