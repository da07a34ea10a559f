// Package persistence implements the on-disk binary layout of the artist
// graph store and its memory-mapped random-access reader.
//
// The store is three files, built offline and immutable for the lifetime of
// a process:
//
//   - metadata.bin: header, fixed-stride record table sorted by artist id,
//     string arena
//   - graph.bin: concatenated forward adjacency blocks
//   - reverse_graph.bin: concatenated reverse adjacency blocks (the exact
//     transpose of the forward graph)
//
// All integers are little-endian. Offsets are 64-bit unsigned, counts 32-bit
// unsigned, identifiers 16 raw bytes. Adjacency entries are sorted by
// similarity descending, which lets a reader stop scanning at the first entry
// below the caller's threshold.
package persistence

import "errors"

const (
	// MagicNumber identifies artistpath metadata files (ASCII: "APM1").
	MagicNumber = 0x41504D31
	// Version is the current file format version.
	Version = 0x00010000

	// HeaderSize is the fixed size of the metadata file header:
	// magic u32, version u32, artist count u32, reserved u32.
	HeaderSize = 16

	// RecordSize is the fixed stride of one metadata record:
	// id 16B, forward offset u64, reverse offset u64,
	// name offset u32, name length u16, url offset u32, url length u16.
	RecordSize = 44

	// NeighborSize is the wire size of one adjacency entry:
	// neighbor id 16B, similarity f32.
	NeighborSize = 20

	// MetadataFile, ForwardGraphFile and ReverseGraphFile are the canonical
	// file names inside a data directory.
	MetadataFile     = "metadata.bin"
	ForwardGraphFile = "graph.bin"
	ReverseGraphFile = "reverse_graph.bin"
)

// Record field offsets within a metadata record.
const (
	recIDOff      = 0
	recFwdOff     = 16
	recRevOff     = 24
	recNameOff    = 32
	recNameLenOff = 36
	recURLOff     = 38
	recURLLenOff  = 42
)

var (
	// ErrCorrupt is the sentinel every structural violation wraps.
	// Callers test with errors.Is; the concrete *CorruptError carries the
	// file, offset and detail.
	ErrCorrupt = errors.New("corrupt store")

	// ErrInvalidMagic indicates the metadata file is not an artistpath store.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrInvalidVersion indicates an unsupported format version.
	ErrInvalidVersion = errors.New("unsupported version")

	// ErrUnknownArtist is returned when an identifier has no metadata record.
	ErrUnknownArtist = errors.New("unknown artist")
)
