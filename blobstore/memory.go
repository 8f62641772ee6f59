package blobstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory BlobStore implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Open opens an artifact for reading.
func (m *MemoryStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy to prevent external mutation.
	return io.NopCloser(bytes.NewReader(append([]byte(nil), data...))), nil
}

// Create creates an artifact that becomes visible on Close.
func (m *MemoryStore) Create(_ context.Context, name string) (io.WriteCloser, error) {
	return &memoryWriter{store: m, name: name}, nil
}

// Put writes an artifact atomically.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes an artifact.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, name)
	return nil
}

// List returns all artifacts matching the prefix, sorted by name.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type memoryWriter struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	w.store.blobs[w.name] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}
