// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// Store files are fetched once at startup; DownloadTo uses the SDK transfer
// manager for parallel ranged gets on the multi-gigabyte graph files.
package s3
