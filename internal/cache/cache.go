// Package cache provides the byte caches shared by the tile and geocode
// components.
//
// A Store maps a string key to an opaque payload. The Dir implementation
// persists each entry as one file whose modification time is the write time,
// so the janitor can age entries out without an index. Memory is a drop-in
// replacement for tests.
//
// Reads never evict. Writes are atomic (temporary file plus rename), which
// makes concurrent writers of the same key safe: same key, same content,
// last write wins.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a key/value byte cache.
type Store interface {
	// Get returns the payload for key and whether it was present.
	Get(key string) ([]byte, bool)
	// Put stores payload under key, replacing any previous entry.
	Put(key string, payload []byte) error
}

// Dir is a Store backed by one directory. Keys become file names with the
// configured extension appended.
type Dir struct {
	root string
	ext  string
}

// NewDir creates a Dir rooted at root, creating the directory with mode 0755.
func NewDir(root, ext string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Dir{root: root, ext: ext}, nil
}

// Root returns the directory holding the entries.
func (d *Dir) Root() string { return d.root }

// Path returns the file path of key.
func (d *Dir) Path(key string) string {
	return filepath.Join(d.root, sanitizeKey(key)+d.ext)
}

// Get reads the entry for key. Any read error counts as a miss.
func (d *Dir) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(d.Path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put writes the entry for key atomically. A root removed since NewDir, by
// the janitor or an operator, is recreated.
func (d *Dir) Put(key string, payload []byte) error {
	tmp, err := os.CreateTemp(d.root, ".tmp-*")
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(d.root, 0o755); mkErr != nil {
			return fmt.Errorf("creating cache directory: %w", mkErr)
		}
		tmp, err = os.CreateTemp(d.root, ".tmp-*")
	}
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache entry: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod cache entry: %w", err)
	}
	if err := os.Rename(tmpName, d.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// sanitizeKey keeps keys inside the cache directory.
func sanitizeKey(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[key]
	return data, ok
}

func (m *Memory) Put(key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), payload...)
	return nil
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
