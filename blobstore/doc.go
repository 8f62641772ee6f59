// Package blobstore provides storage abstraction for exported pipeline
// artifacts (assignment tables, score matrices, snapshots).
//
// BlobStore is the interface for reading and writing named artifacts.
// Artifacts are written once and read sequentially; implementations must
// be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with atomic writes
//   - s3.Store: Amazon S3 with managed uploads
//   - minio.Store: MinIO and S3-compatible storage
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (io.ReadCloser, error)
//	    Create(ctx, name) (io.WriteCloser, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
