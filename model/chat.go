package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"springboard/storage"
)

// Fixed transcript texts.
const (
	ResultsPreface  = "Here are your results:"
	NoResultsText   = "No API's found matching your description."
	SearchErrorText = "Sorry—something went wrong talking to Springboard."
)

// ChatPhase is where the prompt submission flow currently is.
type ChatPhase int

const (
	ChatIdle ChatPhase = iota
	ChatSending
)

// Entry is one transcript row. Results is set only for result lists, which
// live in the transcript and never reach the store.
type Entry struct {
	Role      string
	Content   string
	Timestamp time.Time
	Results   *ResultList
}

// ChatState is the Chat & Search Panel.
type ChatState struct {
	SessionID  string
	Phase      ChatPhase
	Transcript []Entry

	// Expanded is the single open card across every result list.
	Expanded *CardRef

	lists      []*ResultList
	nextListID int
}

// SendEnabled reports whether the send control accepts a prompt.
func (c *ChatState) SendEnabled() bool {
	return c.Phase == ChatIdle
}

func (c *ChatState) reset(sessionID string) {
	c.SessionID = sessionID
	c.Transcript = nil
	c.Expanded = nil
	c.lists = nil
}

func (c *ChatState) appendEntry(e Entry) {
	c.Transcript = append(c.Transcript, e)
}

// NewChat starts an empty session and makes it current.
func (m *Model) NewChat() {
	id, err := m.Store.CreateSession()
	if err != nil {
		m.Logger.Warn().Err(err).Msg("failed to persist new session")
	}
	m.LoadSession(id)
}

// LoadSession replays a stored session into the transcript and makes it
// current. Unknown ids leave the transcript unchanged.
func (m *Model) LoadSession(id string) {
	session, err := m.Store.GetSession(id)
	if err != nil {
		m.Logger.Warn().Err(err).Str("session", id).Msg("failed to load session")
		return
	}

	m.Chat.reset(session.ID)
	for _, msg := range session.Messages {
		m.Chat.appendEntry(Entry{Role: msg.Role, Content: msg.Content, Timestamp: msg.Timestamp})
	}
	_ = m.Store.SetCurrentSessionID(session.ID)
}

// SubmitPrompt moves Idle -> Sending. The user message is stored before the
// request starts. Returns nil when the prompt is blank or a prompt is
// already in flight.
func (m *Model) SubmitPrompt(prompt string) tea.Cmd {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || !m.Chat.SendEnabled() {
		return nil
	}

	if m.Chat.SessionID == "" {
		m.NewChat()
	}
	sessionID := m.Chat.SessionID

	msg, err := m.Store.AppendMessage(sessionID, storage.RoleUser, prompt)
	if err != nil {
		m.Logger.Warn().Err(err).Str("session", sessionID).Msg("failed to persist user message")
	}
	m.Chat.appendEntry(Entry{Role: storage.RoleUser, Content: prompt, Timestamp: msg.Timestamp})
	m.Chat.Phase = ChatSending

	backend := m.Backend
	return func() tea.Msg {
		resp, err := backend.Search(context.Background(), prompt)
		return SearchResultMsg{SessionID: sessionID, Response: resp, Err: err}
	}
}

// HandleSearchResult resolves Sending into one of the rendered outcomes and
// always returns to Idle. A reply for a session that is no longer shown is
// still stored but not rendered.
func (m *Model) HandleSearchResult(msg SearchResultMsg) {
	defer func() { m.Chat.Phase = ChatIdle }()

	visible := msg.SessionID == m.Chat.SessionID

	switch {
	case msg.Err != nil:
		m.Logger.Warn().Err(msg.Err).Str("session", msg.SessionID).Msg("search failed")
		if visible {
			m.Chat.appendEntry(Entry{Role: storage.RoleAssistant, Content: SearchErrorText, Timestamp: time.Now()})
		}

	case !msg.Response.HasResults():
		if visible {
			m.Chat.appendEntry(Entry{Role: storage.RoleAssistant, Content: NoResultsText, Timestamp: time.Now()})
		}

	default:
		stored, err := m.Store.AppendMessage(msg.SessionID, storage.RoleAssistant, ResultsPreface)
		if err != nil {
			m.Logger.Warn().Err(err).Str("session", msg.SessionID).Msg("failed to persist reply")
		}
		if !visible {
			return
		}
		m.Chat.appendEntry(Entry{Role: storage.RoleAssistant, Content: ResultsPreface, Timestamp: stored.Timestamp})
		m.Chat.appendEntry(Entry{Role: storage.RoleAssistant, Results: m.Chat.newResultList(msg.Response)})
	}
}
