// Package blobstore abstracts where the three store files come from.
//
// The engine always reads from local memory-mapped files; a BlobStore is the
// optional bootstrap source that materializes missing files into the data
// directory at startup — from S3, MinIO or another machine-local directory.
// Remote objects may be stored zstd-compressed under "<name>.zst"; Fetch
// decompresses them transparently.
package blobstore
