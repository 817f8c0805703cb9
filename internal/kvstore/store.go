// Package kvstore implements the flat key-value store backing the small
// slice of dashboard state that survives restarts: the auth flag, the
// remembered user, the storage-size config and the notification list.
// Values are kept as raw JSON in a single file with an in-memory cache in
// front, mirroring how the desktop shell persisted its store.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
)

// Well-known keys written by the dashboard.
const (
	KeyIsAuthenticated = "isAuthenticated"
	KeyRememberedUser  = "rememberedUser"
	KeyStorageConfig   = "storageConfig"
	KeyNotifications   = "notifications"
)

// ErrKeyNotFound marks a read of an absent key.
var ErrKeyNotFound = errors.New("key not found")

// StorageConfig is the user-adjustable storage quota, in gigabytes.
type StorageConfig struct {
	StorageSize int `json:"storageSize"`
}

// Store is a file-backed JSON key-value store. A nil path keeps the store
// memory-only, which tests and the default dev setup use.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]json.RawMessage
}

// Open loads (or initializes) a store at path. An empty path creates a
// memory-only store.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: make(map[string]json.RawMessage),
	}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse store %s: %w", path, err)
		}
	}
	return s, nil
}

// Set serializes value under key and flushes to disk.
func (s *Store) Set(key string, value interface{}) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flushLocked()
}

// Get unmarshals the value under key into out.
func (s *Store) Get(key string, out interface{}) error {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("deserialize %s: %w", key, err)
	}
	return nil
}

// GetRaw returns the stored JSON without decoding, for callers that revive
// fields themselves (the notification list's timestamps).
func (s *Store) GetRaw(key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// Keys returns all keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.data))
	for key := range s.data {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Clear drops every key.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]json.RawMessage)
	return s.flushLocked()
}

// Export returns the whole store as one JSON document, used by backups.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sonic.MarshalIndent(s.data, "", "  ")
}

// flushLocked rewrites the backing file atomically: full write to a temp
// file, then rename.
func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}

	raw, err := sonic.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
