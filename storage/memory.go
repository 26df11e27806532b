package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put stores the stream under a mem:// URL derived from the object name.
func (s *MemoryStore) Put(ctx context.Context, r io.Reader, size int64, name, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("storage: reading %s: %w", name, err)
	}

	url := "mem://assets/" + name

	s.mu.Lock()
	s.objects[url] = data
	s.mu.Unlock()

	return url, nil
}

// Remove deletes the object if present. Unknown URLs are a no-op.
func (s *MemoryStore) Remove(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[url]; ok {
		delete(s.objects, url)
		s.removed++
	}
	return nil
}

// Exists reports whether an object is stored under the URL.
func (s *MemoryStore) Exists(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}

// Object returns the stored bytes for a URL.
func (s *MemoryStore) Object(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[url]
	return data, ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Removed returns how many objects have been deleted.
func (s *MemoryStore) Removed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed
}
