package memory

import (
	"context"
	"io"
	"sync"
)

// Storage is an in-memory object store used in tests.
type Storage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

// New creates an empty in-memory storage.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

// Upload keeps the object in memory and returns its URL.
func (s *Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return s.URL(key), nil
}

// Delete forgets the object.
func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// URL returns the public URL for a stored object.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + key
}

// Get returns a stored object's bytes for test assertions.
func (s *Storage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
