package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading immutable data blobs.
type BlobStore interface {
	// Open opens a blob for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Downloader is an optional interface for stores with a faster
// download-to-file path than streaming through Open (e.g. parallel ranged
// gets). Fetch uses it when available.
type Downloader interface {
	// DownloadTo writes the named blob to the local path.
	DownloadTo(ctx context.Context, name, path string) error
}
