package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/genemod/blobstore"
)

// NewClient creates a minio client with static credentials.
func NewClient(endpoint, accessKey, secretKey string, secure bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
}

// Store implements blobstore.BlobStore for MinIO and S3-compatible
// storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO artifact store. rootPrefix is prepended
// to all keys (e.g. "runs/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens an artifact for reading.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)

	// GetObject defers errors to the first read; stat first so missing
	// artifacts surface as ErrNotFound.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Create creates an artifact that is uploaded as it is written and
// becomes visible on Close.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()

	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Put writes an artifact atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes an artifact.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
}

// List returns the names of all artifacts with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	if prefix != "" && strings.HasSuffix(prefix, "/") && full != "" {
		full += "/"
	}

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    full,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		key := obj.Key
		if s.prefix != "" {
			key = strings.TrimPrefix(key, s.key("")+"/")
		}
		names = append(names, key)
	}
	return names, nil
}

type uploadWriter struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *uploadWriter) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
