// Package minio provides a blobstore.BlobStore backed by MinIO or any
// S3-compatible self-hosted object storage.
package minio
