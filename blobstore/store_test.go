package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	t.Helper()

	local, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return map[string]BlobStore{
		"Memory": NewMemoryStore(),
		"Local":  local,
	}
}

func TestStorePutOpenRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "run1/scores.tsv.gz", []byte("payload")))

			r, err := store.Open(ctx, "run1/scores.tsv.gz")
			require.NoError(t, err)
			defer r.Close()

			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, []byte("payload"), data)
		})
	}
}

func TestStoreCreateVisibleOnClose(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := store.Create(ctx, "run1/assignments.tsv.gz")
			require.NoError(t, err)

			_, err = w.Write([]byte("part1"))
			require.NoError(t, err)

			// Not yet visible.
			_, err = store.Open(ctx, "run1/assignments.tsv.gz")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = w.Write([]byte("part2"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := store.Open(ctx, "run1/assignments.tsv.gz")
			require.NoError(t, err)
			defer r.Close()

			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, []byte("part1part2"), data)
		})
	}
}

func TestStoreOpenMissing(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Open(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "a", []byte("x")))
			require.NoError(t, store.Delete(ctx, "a"))

			_, err := store.Open(ctx, "a")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting a missing artifact is not an error.
			assert.NoError(t, store.Delete(ctx, "a"))
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "run1/a", []byte("1")))
			require.NoError(t, store.Put(ctx, "run1/b", []byte("2")))
			require.NoError(t, store.Put(ctx, "run2/c", []byte("3")))

			names, err := store.List(ctx, "run1/")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"run1/a", "run1/b"}, names)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}
