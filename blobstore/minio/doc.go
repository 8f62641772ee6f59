// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores.
//
//	client, _ := minio.NewClient("localhost:9000", "key", "secret", false)
//	store := minio.NewStore(client, "genemod", "runs/")
package minio
