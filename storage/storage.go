// Package storage provides durable object storage for extracted assets.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidURL is returned by Remove when a URL cannot be mapped back
// to an object in the store.
var ErrInvalidURL = errors.New("storage: URL does not address an object in this store")

// Store puts and removes opaque byte streams in durable object storage.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores the stream under the given object name and returns an
	// addressable URL for it.
	Put(ctx context.Context, r io.Reader, size int64, name, contentType string) (string, error)

	// Remove deletes the object addressed by a URL previously returned
	// from Put. Removing a nonexistent object is not an error.
	Remove(ctx context.Context, url string) error
}
