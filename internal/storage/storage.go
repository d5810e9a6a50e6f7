package storage

import (
	"context"
	"io"
)

// Storage persists uploaded post images. Implementations return a public URL
// for the stored object.
type Storage interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for an already-stored object.
	URL(key string) string
}
