package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickClock returns a clock that advances one second per call.
func tickClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("local-%03d", n)
	}
}

func newTestStore(t *testing.T, kv KV) *ChatStore {
	t.Helper()
	s, err := NewChatStore(kv, WithClock(tickClock()), WithIDGenerator(seqIDs()))
	require.NoError(t, err)
	return s
}

func TestCreateSessionAddsSystemMessage(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())

	id, err := s.CreateSession()
	require.NoError(t, err)
	assert.Equal(t, "local-001", id)

	session, err := s.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "Chat 1", session.Title)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, RoleSystem, session.Messages[0].Role)
	assert.Equal(t, NewConversationText, session.Messages[0].Content)
}

func TestCreateSessionInsertsAtFront(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())

	first, _ := s.CreateSession()
	second, _ := s.CreateSession()

	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)
	assert.Equal(t, "Chat 2", sessions[0].Title)
}

func TestCreateSessionSkipsCollidingIDs(t *testing.T) {
	ids := []string{"local-a", "local-a", "local-b"}
	i := 0
	s, err := NewChatStore(NewMemoryKV(), WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))
	require.NoError(t, err)

	a, _ := s.CreateSession()
	b, _ := s.CreateSession()
	assert.Equal(t, "local-a", a)
	assert.Equal(t, "local-b", b)
}

func TestAppendMessagePreservesCallOrder(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	id, _ := s.CreateSession()

	inputs := []struct{ role, content string }{
		{RoleUser, "one"},
		{RoleAssistant, "two"},
		{RoleUser, "three"},
		{RoleSystem, "four"},
		{RoleAssistant, "five"},
	}
	for _, in := range inputs {
		_, err := s.AppendMessage(id, in.role, in.content)
		require.NoError(t, err)
	}

	session, err := s.GetSession(id)
	require.NoError(t, err)
	require.Len(t, session.Messages, len(inputs)+1)
	for i, in := range inputs {
		got := session.Messages[i+1]
		assert.Equal(t, in.role, got.Role)
		assert.Equal(t, in.content, got.Content)
	}
	for i := 1; i < len(session.Messages); i++ {
		assert.True(t, session.Messages[i].Timestamp.After(session.Messages[i-1].Timestamp))
	}
}

func TestAppendMessageAutoCreatesSession(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	_, _ = s.CreateSession()

	_, err := s.AppendMessage("ghost", RoleAssistant, "hello")
	require.NoError(t, err)

	session, err := s.GetSession("ghost")
	require.NoError(t, err)
	assert.Equal(t, "Chat 2", session.Title)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "ghost", s.Sessions()[0].ID)
}

func TestAppendMessageRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	id, _ := s.CreateSession()

	_, err := s.AppendMessage(id, "robot", "beep")
	assert.True(t, errors.Is(err, ErrInvalidRole))

	session, _ := s.GetSession(id)
	assert.Len(t, session.Messages, 1)
}

func TestTitleFromFirstUserMessage(t *testing.T) {
	long := strings.Repeat("a", 41)
	exact := strings.Repeat("b", 40)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "weather api", "weather api"},
		{"exactly forty", exact, exact},
		{"forty one", long, strings.Repeat("a", 40) + "…"},
		{"multibyte", strings.Repeat("é", 45), strings.Repeat("é", 40) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, NewMemoryKV())
			id, _ := s.CreateSession()

			_, err := s.AppendMessage(id, RoleUser, tt.content)
			require.NoError(t, err)
			_, err = s.AppendMessage(id, RoleUser, "second prompt")
			require.NoError(t, err)

			session, _ := s.GetSession(id)
			assert.Equal(t, tt.want, session.Title)
		})
	}
}

func TestTitleNotDerivedFromAssistantMessage(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())

	_, err := s.AppendMessage("fresh", RoleAssistant, "Here are your results:")
	require.NoError(t, err)

	session, _ := s.GetSession("fresh")
	assert.Equal(t, "Chat 1", session.Title)
}

func TestListSessionsByRecency(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())

	a, _ := s.CreateSession() // T1
	b, _ := s.CreateSession() // T2
	c, _ := s.CreateSession() // T3

	// Touch a so it becomes the most recent.
	_, err := s.AppendMessage(a, RoleUser, "bump")
	require.NoError(t, err)

	list := s.ListSessionsByRecency()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a, c, b}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 2, list[0].MessageCount)
}

func TestListSessionsByRecencyIsStable(t *testing.T) {
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewChatStore(NewMemoryKV(),
		WithClock(func() time.Time { return frozen }),
		WithIDGenerator(seqIDs()))
	require.NoError(t, err)

	first, _ := s.CreateSession()
	second, _ := s.CreateSession()
	third, _ := s.CreateSession()

	list := s.ListSessionsByRecency()
	// Equal timestamps keep store order (newest created first).
	assert.Equal(t, []string{third, second, first}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	_, err := s.GetSession("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestGetSessionReturnsCopy(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	id, _ := s.CreateSession()

	session, _ := s.GetSession(id)
	session.Messages[0].Content = "tampered"

	again, _ := s.GetSession(id)
	assert.Equal(t, NewConversationText, again.Messages[0].Content)
}

func TestWriteThroughPersistence(t *testing.T) {
	kv := NewMemoryKV()
	s := newTestStore(t, kv)

	id, _ := s.CreateSession()
	_, err := s.AppendMessage(id, RoleUser, "weather api")
	require.NoError(t, err)

	raw, err := kv.Get(SessionsKey)
	require.NoError(t, err)

	var stored []Session
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "weather api", stored[0].Title)
	assert.Len(t, stored[0].Messages, 2)

	reloaded, err := NewChatStore(kv)
	require.NoError(t, err)
	session, err := reloaded.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "weather api", session.Messages[1].Content)
}

type failingKV struct {
	*MemoryKV
}

func (failingKV) Set(string, []byte) error {
	return errors.New("disk full")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	s := newTestStore(t, failingKV{NewMemoryKV()})

	id, err := s.CreateSession()
	assert.Error(t, err)
	assert.NotEmpty(t, id)

	_, err = s.AppendMessage(id, RoleUser, "still here")
	assert.Error(t, err)

	session, getErr := s.GetSession(id)
	require.NoError(t, getErr)
	assert.Len(t, session.Messages, 2)
}

func TestCorruptHistoryStartsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(SessionsKey, []byte("{not json")))

	s, err := NewChatStore(kv)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestCurrentSessionID(t *testing.T) {
	kv := NewMemoryKV()
	s := newTestStore(t, kv)

	assert.Equal(t, "", s.CurrentSessionID())

	id, _ := s.CreateSession()
	require.NoError(t, s.SetCurrentSessionID(id))

	reloaded, err := NewChatStore(kv)
	require.NoError(t, err)
	assert.Equal(t, id, reloaded.CurrentSessionID())

	// Unknown ids are not reported as current.
	require.NoError(t, reloaded.SetCurrentSessionID("gone"))
	assert.Equal(t, "", reloaded.CurrentSessionID())
}

func TestExportSession(t *testing.T) {
	s := newTestStore(t, NewMemoryKV())
	id, _ := s.CreateSession()
	_, _ = s.AppendMessage(id, RoleUser, "weather api")

	path := filepath.Join(t.TempDir(), "nested", "export.json")
	require.NoError(t, s.ExportSession(id, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var exported Session
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, id, exported.ID)
	assert.Len(t, exported.Messages, 2)

	assert.Error(t, s.ExportSession("missing", path))
}

func TestGenerateExportPath(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	got := GenerateExportPath("/tmp/dl", "weather api: v2", now)
	assert.Equal(t, "/tmp/dl/springboard-chat-weather-api--v2-20250304-050607.json", got)
}
