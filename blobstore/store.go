package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an artifact does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing immutable run artifacts.
type BlobStore interface {
	// Open opens an artifact for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create creates an artifact for sequential writing. The artifact
	// becomes visible when the returned writer is closed.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Put writes an artifact atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes an artifact. Deleting a missing artifact is not an
	// error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all artifacts with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
