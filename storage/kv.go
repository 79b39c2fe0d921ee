package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KV is the local key/value medium behind the chat history cache. Values are
// opaque text blobs; callers own the encoding.
type KV interface {
	// Get returns ErrKeyNotFound when the key has never been written.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

var ErrKeyNotFound = errors.New("key not found")

// OpenKV opens the backend named in config: "file", "sqlite" or "memory".
func OpenKV(backend, dataDir string) (KV, error) {
	switch backend {
	case "", "file":
		return NewFileKV(filepath.Join(dataDir, "local_storage"))
	case "sqlite":
		return NewSQLiteKV(filepath.Join(dataDir, "local_storage.db"))
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// MemoryKV keeps everything in process memory. Used by tests and --ephemeral.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}

// FileKV stores one file per key: <dir>/<key>.json
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	// 0700 - chat history is user-only
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, SanitizeFilename(key)+".json")
}

func (f *FileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes through a temp file and rename so a crash never leaves a
// half-written history behind.
func (f *FileKV) Set(key string, value []byte) error {
	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Close() error {
	return nil
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)

	// Remove leading/trailing hyphens and dots
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "session"
	}

	return name
}
