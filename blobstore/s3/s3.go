package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/genemod/blobstore"
)

// Options represents the options for configuring the S3 store.
type Options struct {
	// Prefix is prepended to every artifact name (e.g. "runs/").
	Prefix string

	// Client overrides the S3 client. If nil, one is built from the
	// default AWS configuration.
	Client *s3.Client
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(o *Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithClient sets a pre-configured S3 client.
func WithClient(client *s3.Client) func(o *Options) {
	return func(o *Options) { o.Client = client }
}

// Store implements blobstore.BlobStore for Amazon S3.
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// New creates a new S3 artifact store for the given bucket.
func New(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		client = s3.NewFromConfig(cfg)
	}

	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   opts.Prefix,
	}, nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens an artifact for reading.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Create creates an artifact that is uploaded as it is written and
// becomes visible on Close.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()

	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
			Body:   pr,
		})
		// Unblock the writer if the upload fails mid-stream.
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Put writes an artifact atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes an artifact. S3 treats deleting a missing key as
// success, matching the BlobStore contract.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the names of all artifacts with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	// path.Join strips a trailing slash the caller meant as a delimiter.
	if prefix != "" && prefix[len(prefix)-1] == '/' && full != "" {
		full += "/"
	}

	var names []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(full),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.prefix != "" {
				key = strings.TrimPrefix(key, s.key("")+"/")
			}
			names = append(names, key)
		}
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
