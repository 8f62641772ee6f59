// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// Uploads go through the SDK's transfer manager, so large score matrices
// stream in parts without buffering the whole artifact in memory.
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("runs/"))
//	_ = store.Put(ctx, "run1/scores.tsv.gz", data)
package s3
