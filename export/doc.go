// Package export writes pipeline results as durable artifacts.
//
// Two artifact families are supported: gzip-compressed TSV tables for
// downstream analysis tooling (module assignments and per-cell score
// matrices), and a compact lz4-framed binary snapshot of a score matrix
// with a CRC32-Castagnoli checksum for integrity. Artifacts go through a
// blobstore.BlobStore, so the same code targets local disk, memory, S3
// or MinIO.
package export
