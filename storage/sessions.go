package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	// SessionsKey holds the whole history as one JSON array.
	SessionsKey       = "sb_chats"
	currentSessionKey = "sb_current_chat"

	NewConversationText = "New conversation started."

	titleLimit = 40
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRole     = errors.New("invalid message role")
)

// Message represents a chat message. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

// Session represents a chat session
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastActivity time.Time `json:"ts"`
	Messages     []Message `json:"messages"`
}

// SessionSummary is a lightweight version of Session for the history list
type SessionSummary struct {
	ID           string
	Title        string
	LastActivity time.Time
	MessageCount int
}

// ChatStore is the write-through cache of every chat session. Sessions are
// kept in store order (newest created first) and the whole list is rewritten
// to the KV after every mutation.
type ChatStore struct {
	mu       sync.Mutex
	kv       KV
	sessions []*Session
	current  string

	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

type StoreOption func(*ChatStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *ChatStore) { s.now = now }
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *ChatStore) { s.newID = newID }
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *ChatStore) { s.logger = logger }
}

// NewChatStore reads the history from kv. A missing entry gives an empty
// store; a corrupt one is logged and also treated as empty.
func NewChatStore(kv KV, opts ...StoreOption) (*ChatStore, error) {
	s := &ChatStore{
		kv:     kv,
		now:    time.Now,
		newID:  defaultSessionID,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := kv.Get(SessionsKey)
	switch {
	case errors.Is(err, ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	default:
		var sessions []*Session
		if err := json.Unmarshal(data, &sessions); err != nil {
			s.logger.Warn().Err(err).Msg("chat history is corrupt, starting empty")
		} else {
			s.sessions = sessions
		}
	}

	if id, err := kv.Get(currentSessionKey); err == nil {
		s.current = string(id)
	}

	return s, nil
}

func defaultSessionID() string {
	return "local-" + uuid.NewString()[:8]
}

// CreateSession starts a new session at the front of the store. The returned
// id is valid even when persisting fails; the error only reports the write.
func (s *ChatStore) CreateSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.insertLocked(s.uniqueIDLocked())
	s.appendLocked(session, RoleSystem, NewConversationText)

	return session.ID, s.persistLocked()
}

// AppendMessage appends to a session, creating it first when the id is
// unknown. The first user message of a session sets its title.
func (s *ChatStore) AppendMessage(sessionID, role, content string) (Message, error) {
	if !validRole(role) {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		session = s.insertLocked(sessionID)
	}
	msg := s.appendLocked(session, role, content)

	return msg, s.persistLocked()
}

// ListSessionsByRecency sorts by last activity, newest first. Ties keep
// store order.
func (s *ChatStore) ListSessionsByRecency() []SessionSummary {
	s.mu.Lock()
	summaries := make([]SessionSummary, len(s.sessions))
	for i, session := range s.sessions {
		summaries[i] = SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			LastActivity: session.LastActivity,
			MessageCount: len(session.Messages),
		}
	}
	s.mu.Unlock()

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})

	return summaries
}

// GetSession returns a copy of the session.
func (s *ChatStore) GetSession(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(id)
	if session == nil {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return copySession(session), nil
}

// Sessions returns copies of every session in store order.
func (s *ChatStore) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, len(s.sessions))
	for i, session := range s.sessions {
		out[i] = copySession(session)
	}
	return out
}

func (s *ChatStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CurrentSessionID is the last session shown, or "" if it no longer exists.
func (s *ChatStore) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" || s.findLocked(s.current) == nil {
		return ""
	}
	return s.current
}

func (s *ChatStore) SetCurrentSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = id
	if err := s.kv.Set(currentSessionKey, []byte(id)); err != nil {
		s.logger.Warn().Err(err).Str("session", id).Msg("failed to persist current session")
		return err
	}
	return nil
}

// ExportSession exports a session to a JSON file at the specified path
func (s *ChatStore) ExportSession(id string, exportPath string) error {
	session, err := s.GetSession(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Ensure directory exists (0700 - user-only access)
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to file (0600 - exports contain conversation history)
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// GenerateExportPath generates a default export path for a session
func GenerateExportPath(dir, sessionTitle string, now time.Time) string {
	filename := fmt.Sprintf("springboard-chat-%s-%s.json", SanitizeFilename(sessionTitle), now.Format("20060102-150405"))
	return filepath.Join(dir, filename)
}

// DeriveTitle truncates to 40 characters, adding an ellipsis only when
// something was cut.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "…"
}

func (s *ChatStore) insertLocked(id string) *Session {
	session := &Session{
		ID:           id,
		Title:        fmt.Sprintf("Chat %d", len(s.sessions)+1),
		LastActivity: s.now(),
		Messages:     []Message{},
	}
	s.sessions = append([]*Session{session}, s.sessions...)
	return session
}

func (s *ChatStore) appendLocked(session *Session, role, content string) Message {
	firstUser := role == RoleUser && !hasUserMessage(session)

	ts := s.now()
	msg := Message{Role: role, Content: content, Timestamp: ts}
	session.Messages = append(session.Messages, msg)
	session.LastActivity = ts

	if firstUser {
		session.Title = DeriveTitle(content)
	}
	return msg
}

func (s *ChatStore) findLocked(id string) *Session {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func (s *ChatStore) uniqueIDLocked() string {
	for {
		id := s.newID()
		if s.findLocked(id) == nil {
			return id
		}
	}
}

// persistLocked is best effort: in-memory state is kept even when the write
// fails.
func (s *ChatStore) persistLocked() error {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	if err := s.kv.Set(SessionsKey, data); err != nil {
		s.logger.Warn().Err(err).Int("sessions", len(s.sessions)).Msg("failed to persist chat history")
		return fmt.Errorf("failed to persist chat history: %w", err)
	}
	return nil
}

func hasUserMessage(session *Session) bool {
	for _, msg := range session.Messages {
		if msg.Role == RoleUser {
			return true
		}
	}
	return false
}

func validRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

func copySession(session *Session) Session {
	out := *session
	out.Messages = append([]Message(nil), session.Messages...)
	return out
}
