package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"

	"github.com/malbiruk/artistpath/codec"
	"github.com/malbiruk/artistpath/model"
)

// ExportMagic identifies exported subgraph files (ASCII: "APSG").
const ExportMagic = 0x41505347

// ExportSubgraph writes a query result subgraph to w as an lz4-framed,
// self-describing blob: magic, codec name, then the compressed encoding.
// The UI collaborator caches these between sessions.
func ExportSubgraph(w io.Writer, sg model.Subgraph, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}

	name := c.Name()
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("export subgraph: codec name too long")
	}

	var header [6]byte
	binary.LittleEndian.PutUint32(header[0:4], ExportMagic)
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(name)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("export subgraph: %w", err)
	}
	if _, err := io.WriteString(w, name); err != nil {
		return fmt.Errorf("export subgraph: %w", err)
	}

	encoded, err := c.Marshal(sg)
	if err != nil {
		return fmt.Errorf("export subgraph: %w", err)
	}

	zw := lz4.NewWriter(w)
	if _, err := zw.Write(encoded); err != nil {
		return fmt.Errorf("export subgraph: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export subgraph: %w", err)
	}
	return nil
}

// ImportSubgraph reads a blob written by ExportSubgraph. The codec is
// selected by the name recorded in the header.
func ImportSubgraph(r io.Reader) (model.Subgraph, error) {
	var sg model.Subgraph

	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return sg, fmt.Errorf("import subgraph: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != ExportMagic {
		return sg, fmt.Errorf("import subgraph: %w: got 0x%08X", ErrInvalidMagic, magic)
	}

	nameLen := int(binary.LittleEndian.Uint16(header[4:6]))
	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return sg, fmt.Errorf("import subgraph: %w", err)
	}

	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return sg, fmt.Errorf("import subgraph: unknown codec %q", nameBuf)
	}

	decoded, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return sg, fmt.Errorf("import subgraph: %w", err)
	}
	if err := c.Unmarshal(decoded, &sg); err != nil {
		return sg, fmt.Errorf("import subgraph: %w", err)
	}
	return sg, nil
}
