package artistpath

import (
	"context"
	"fmt"
	"io"

	"github.com/malbiruk/artistpath/blobstore"
	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

// fetchStore materializes missing store files from the configured blob
// store before the engine maps them.
func fetchStore(ctx context.Context, dataDir string, opts *options) error {
	opts.logger.InfoContext(ctx, "fetching store files", "dir", dataDir)
	if err := blobstore.Fetch(ctx, opts.blobStore, dataDir); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// ExportSubgraph serializes a query result subgraph with the configured
// codec, lz4-framed, for the visualization collaborator's cache.
func (e *Engine) ExportSubgraph(w io.Writer, sg model.Subgraph) error {
	return persistence.ExportSubgraph(w, sg, e.opts.codec)
}

// ImportSubgraph reads a subgraph previously written by ExportSubgraph.
func ImportSubgraph(r io.Reader) (model.Subgraph, error) {
	return persistence.ImportSubgraph(r)
}
