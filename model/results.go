package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"springboard/client"
)

const (
	DetailLoadingText = "Loading details…"
	DetailErrorText   = "Error loading API details."
	LikeFailedText    = "Failed to like API."
)

// DetailState tracks the lazy detail fetch of one card.
type DetailState int

const (
	DetailNone DetailState = iota
	DetailLoading
	DetailLoaded
	DetailFailed
)

// CardRef addresses a card across every result list of the transcript.
type CardRef struct {
	List int
	Card int
}

type ResultList struct {
	ID    int
	Cards []*ResultCard
}

type ResultCard struct {
	Candidate client.Candidate
	Detail    client.APIDetail
	State     DetailState

	// Likes is unknown until a like response reports it.
	Likes        *int
	Liked        bool
	LikeInFlight bool

	detailSeq int
}

// Body is what an open card shows under its header.
func (c *ResultCard) Body() string {
	switch c.State {
	case DetailLoaded:
		return c.Detail.Description
	case DetailFailed:
		return DetailErrorText
	default:
		return DetailLoadingText
	}
}

// LikeEnabled reports whether the like control accepts a click.
func (c *ResultCard) LikeEnabled() bool {
	return c.State == DetailLoaded && !c.LikeInFlight
}

func (c *ChatState) newResultList(resp client.SearchResponse) *ResultList {
	list := &ResultList{ID: c.nextListID}
	c.nextListID++
	for _, cand := range resp.Candidates {
		list.Cards = append(list.Cards, &ResultCard{Candidate: cand})
	}
	c.lists = append(c.lists, list)
	return list
}

// Card looks up a card; nil when the ref is stale.
func (c *ChatState) Card(ref CardRef) *ResultCard {
	for _, list := range c.lists {
		if list.ID != ref.List {
			continue
		}
		if ref.Card < 0 || ref.Card >= len(list.Cards) {
			return nil
		}
		return list.Cards[ref.Card]
	}
	return nil
}

// IsExpanded reports whether ref is the open card.
func (c *ChatState) IsExpanded(ref CardRef) bool {
	return c.Expanded != nil && *c.Expanded == ref
}

// CardRefs lists every card of the transcript in display order.
func (c *ChatState) CardRefs() []CardRef {
	var refs []CardRef
	for _, list := range c.lists {
		for i := range list.Cards {
			refs = append(refs, CardRef{List: list.ID, Card: i})
		}
	}
	return refs
}

// ToggleCard closes an open card or opens a closed one, closing whatever
// else was open. Every open refetches the detail.
func (m *Model) ToggleCard(ref CardRef) tea.Cmd {
	card := m.Chat.Card(ref)
	if card == nil {
		return nil
	}
	if m.Chat.IsExpanded(ref) {
		m.Chat.Expanded = nil
		return nil
	}

	m.Chat.Expanded = &ref
	card.State = DetailLoading
	card.detailSeq++
	seq := card.detailSeq
	name := card.Candidate.APIName

	backend := m.Backend
	return func() tea.Msg {
		detail, err := backend.Detail(context.Background(), name)
		return DetailLoadedMsg{Card: ref, Seq: seq, Detail: detail, Err: err}
	}
}

// HandleDetail applies a detail response unless a newer open superseded it.
// A failed fetch leaves the card expanded.
func (m *Model) HandleDetail(msg DetailLoadedMsg) {
	card := m.Chat.Card(msg.Card)
	if card == nil || card.detailSeq != msg.Seq {
		return
	}
	if msg.Err != nil {
		m.Logger.Warn().Err(msg.Err).Str("api", card.Candidate.APIName).Msg("detail fetch failed")
		card.State = DetailFailed
		return
	}
	card.Detail = msg.Detail
	card.State = DetailLoaded
}

// LikeCard sends one like for a card. The count only changes on success.
func (m *Model) LikeCard(ref CardRef) tea.Cmd {
	card := m.Chat.Card(ref)
	if card == nil || !card.LikeEnabled() || !m.Chat.IsExpanded(ref) {
		return nil
	}
	card.LikeInFlight = true
	name := card.Candidate.APIName

	backend := m.Backend
	return func() tea.Msg {
		resp, err := backend.LikeCard(context.Background(), name)
		return CardLikedMsg{Card: ref, Response: resp, Err: err}
	}
}

func (m *Model) HandleCardLiked(msg CardLikedMsg) {
	card := m.Chat.Card(msg.Card)
	if card == nil {
		return
	}
	card.LikeInFlight = false

	if msg.Err != nil {
		m.alert(LikeFailedText, msg.Err)
		return
	}
	if msg.Response.Likes != nil {
		likes := *msg.Response.Likes
		card.Likes = &likes
	}
	card.Liked = true
}
