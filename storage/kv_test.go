package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVBackends(t *testing.T) {
	backends := []string{"file", "sqlite", "memory"}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			kv, err := OpenKV(backend, t.TempDir())
			require.NoError(t, err)
			defer kv.Close()

			_, err = kv.Get(SessionsKey)
			assert.True(t, errors.Is(err, ErrKeyNotFound))

			require.NoError(t, kv.Set(SessionsKey, []byte(`[{"id":"a"}]`)))
			got, err := kv.Get(SessionsKey)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, string(got))

			require.NoError(t, kv.Set(SessionsKey, []byte(`[]`)))
			got, err = kv.Get(SessionsKey)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestOpenKVUnknownBackend(t *testing.T) {
	_, err := OpenKV("redis", t.TempDir())
	assert.Error(t, err)
}

func TestFileKVSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(SessionsKey, []byte("payload")))

	info, err := os.Stat(filepath.Join(dir, SessionsKey+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	got, err := reopened.Get(SessionsKey)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLiteKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local_storage.db")

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(SessionsKey, []byte("payload")))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(SessionsKey)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestChatStoreOverSQLite(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	defer kv.Close()

	s := newTestStore(t, kv)
	id, _ := s.CreateSession()
	_, err = s.AppendMessage(id, RoleUser, "sends email")
	require.NoError(t, err)

	reloaded, err := NewChatStore(kv)
	require.NoError(t, err)
	session, err := reloaded.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, "sends email", session.Title)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"sb_chats":     "sb_chats",
		"a/b\\c":       "a-b-c",
		"..hidden..":   "hidden",
		"":             "session",
		"with space?*": "with-space",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}
