package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage stores images on the local filesystem under a base directory. The
// files are served back by the HTTP server's static file route.
type Storage struct {
	basePath string
	baseURL  string
}

// New creates a local disk storage rooted at basePath. Stored objects are
// addressable under baseURL.
func New(basePath, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload writes the object to disk and returns its public URL.
func (s *Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write object: %w", err)
	}

	return s.URL(key), nil
}

// Delete removes the object file. A missing file is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored object.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + key
}

// resolve maps a key to a filesystem path, rejecting traversal outside the
// base directory.
func (s *Storage) resolve(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.basePath, cleaned), nil
}
