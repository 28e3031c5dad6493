package threadview

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MarkerStore remembers which (thread, day) views were already registered.
type MarkerStore interface {
	Has(key string) bool
	Set(key string) error
}

type MemoryMarkers struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryMarkers() *MemoryMarkers {
	return &MemoryMarkers{keys: make(map[string]struct{})}
}

func (m *MemoryMarkers) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok
}

func (m *MemoryMarkers) Set(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = struct{}{}
	return nil
}

// FileMarkers persists markers as a JSON list so they survive between runs
// of the command line client. Only the latest day is kept.
type FileMarkers struct {
	path string
	mem  *MemoryMarkers
}

func OpenFileMarkers(path string) (*FileMarkers, error) {
	f := &FileMarkers{path: path, mem: NewMemoryMarkers()}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	for _, k := range keys {
		f.mem.keys[k] = struct{}{}
	}
	return f, nil
}

func (f *FileMarkers) Has(key string) bool {
	return f.mem.Has(key)
}

func (f *FileMarkers) Set(key string) error {
	f.mem.mu.Lock()
	defer f.mem.mu.Unlock()
	f.mem.keys[key] = struct{}{}
	// markers from other days can never match again
	day := key[strings.LastIndex(key, ":")+1:]
	for k := range f.mem.keys {
		if !strings.HasSuffix(k, ":"+day) {
			delete(f.mem.keys, k)
		}
	}

	keys := make([]string, 0, len(f.mem.keys))
	for k := range f.mem.keys {
		keys = append(keys, k)
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}
