package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"springboard/client"
	"springboard/client/clienttest"
	"springboard/model"
	"springboard/storage"
)

// execute runs the root command against a throwaway data directory.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPRINGBOARD_API_BASE", "")
	t.Setenv("SPRINGBOARD_DATA_DIR", "")
	t.Setenv("SPRINGBOARD_STORAGE", "")

	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// seed writes one chat to the file backend and returns its id.
func seed(t *testing.T, dataDir string, messages ...string) string {
	t.Helper()
	kv, err := storage.OpenKV("file", dataDir)
	require.NoError(t, err)
	defer kv.Close()

	store, err := storage.NewChatStore(kv)
	require.NoError(t, err)
	id, err := store.CreateSession()
	require.NoError(t, err)
	for _, m := range messages {
		_, err := store.AppendMessage(id, storage.RoleUser, m)
		require.NoError(t, err)
	}
	require.NoError(t, store.SetCurrentSessionID(id))
	return id
}

func TestHistoryListEmpty(t *testing.T) {
	out, err := execute(t, t.TempDir(), "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No chats found")
}

func TestHistoryListAndSearch(t *testing.T) {
	dir := t.TempDir()
	id := seed(t, dir, "weather api", "something for forecasts")

	out, err := execute(t, dir, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+id)
	assert.Contains(t, out, "weather api")

	out, err = execute(t, dir, "history", "search", "FORECAST")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "[user] something for forecasts")

	out, err = execute(t, dir, "history", "search", "mail")
	require.NoError(t, err)
	assert.Contains(t, out, `No messages match "mail"`)
}

func TestHistoryExport(t *testing.T) {
	dir := t.TempDir()
	id := seed(t, dir, "weather api")
	target := filepath.Join(t.TempDir(), "out", "chat.json")

	out, err := execute(t, dir, "history", "export", id, target)
	require.NoError(t, err)
	assert.Contains(t, out, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var session storage.Session
	require.NoError(t, json.Unmarshal(data, &session))
	assert.Equal(t, id, session.ID)
	assert.Equal(t, "weather api", session.Title)
	require.NotEmpty(t, session.Messages)
}

func TestHistoryExportUnknownSession(t *testing.T) {
	_, err := execute(t, t.TempDir(), "history", "export", "nope", filepath.Join(t.TempDir(), "x.json"))
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSearchCommand(t *testing.T) {
	backend := clienttest.New().
		AddAPI(client.APISummary{ID: "1", Name: "WeatherNow", Description: "Current weather"}).
		AddAPI(client.APISummary{ID: "2", Name: "MailerX", Description: "sends emails"})
	srv := backend.Start(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"results", []string{"search", "weather"}, "🔹 WeatherNow — Current weather"},
		{"joined prompt", []string{"search", "sends", "emails"}, "🔹 MailerX — sends emails"},
		{"no results", []string{"search", "geocoding"}, model.NoResultsText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			out, err := execute(t, dir, append([]string{"--api-base", srv.URL}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)

			// One-shot searches are not written to history.
			out, err = execute(t, dir, "history", "list")
			require.NoError(t, err)
			assert.Contains(t, out, "No chats found")
		})
	}
}

func TestSearchCommandBackendFailure(t *testing.T) {
	srv := clienttest.New().Fail(clienttest.RouteSearch, http.StatusInternalServerError).Start(t)

	_, err := execute(t, t.TempDir(), "--api-base", srv.URL, "search", "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.SearchErrorText)
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--storage", "redis", "history", "list")
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = execute(t, t.TempDir(), "--api-base", "ftp://example.com", "history", "list")
	assert.ErrorContains(t, err, "http:// or https://")
}

func TestEphemeralIgnoresSavedHistory(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "weather api")

	out, err := execute(t, dir, "--ephemeral", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No chats found")
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}
