package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/malbiruk/artistpath/persistence"
)

// StoreFiles are the blobs a data directory needs before the engine can
// open it.
var StoreFiles = []string{
	persistence.MetadataFile,
	persistence.ForwardGraphFile,
	persistence.ReverseGraphFile,
}

// Fetch materializes every missing store file in dir from src. Files already
// present are left untouched, so a warm data directory costs nothing.
//
// For each file, Fetch tries "<name>.zst" first (decompressed on the fly),
// then the plain name. Downloads go through a temp file and rename so a
// crashed fetch never leaves a truncated store file behind.
func Fetch(ctx context.Context, src BlobStore, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fetch store: %w", err)
	}

	for _, name := range StoreFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("fetch store: %w", err)
		}

		if err := fetchOne(ctx, src, name, path); err != nil {
			return fmt.Errorf("fetch store %s: %w", name, err)
		}
	}
	return nil
}

func fetchOne(ctx context.Context, src BlobStore, name, path string) error {
	// Compressed variant first: large graph files ship much smaller.
	rc, err := src.Open(ctx, name+".zst")
	if err == nil {
		defer rc.Close()
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return err
		}
		defer dec.Close()
		return writeAtomic(path, dec)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	// Plain object: use the store's fast download path when it has one.
	if dl, ok := src.(Downloader); ok {
		tmp := path + ".tmp"
		if err := dl.DownloadTo(ctx, name, tmp); err != nil {
			_ = os.Remove(tmp)
			return err
		}
		return os.Rename(tmp, path)
	}

	rc, err = src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeAtomic(path, rc)
}

func writeAtomic(path string, r io.Reader) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
