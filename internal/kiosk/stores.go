package kiosk

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MemoryIdentityStore is an in-memory IdentityStore. Useful for tests and as
// the degraded mode when no writable path exists.
type MemoryIdentityStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{values: make(map[string]string)}
}

func (s *MemoryIdentityStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryIdentityStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileIdentityStore persists identity keys in a small JSON file, the
// localStorage analogue for a kiosk host. Reads of a missing or corrupt file
// behave as an empty store.
type FileIdentityStore struct {
	mu   sync.Mutex
	path string
}

func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{path: path}
}

func (s *FileIdentityStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.load()
	value, ok := values[key]
	return value, ok
}

func (s *FileIdentityStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.load()
	values[key] = value

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal identity store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity store: %w", err)
	}
	return nil
}

func (s *FileIdentityStore) load() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string)
	}
	return values
}

// MemoryCacheStore is the session-scoped KV backing the submission cache:
// it lives as long as the process, the sessionStorage analogue.
type MemoryCacheStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{values: make(map[string]string)}
}

func (s *MemoryCacheStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryCacheStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
