package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/malbiruk/artistpath/internal/mmap"
	"github.com/malbiruk/artistpath/model"
)

// Record is one decoded metadata table row.
type Record struct {
	ID            model.ArtistID
	ForwardOffset uint64
	ReverseOffset uint64
	Name          string
	URL           string
}

// Store is the random-access reader over the three memory-mapped files.
//
// A Store holds only the mappings and constant header data, so it behaves as
// a shared immutable resource: concurrent reads from any number of search
// workers are safe without locks.
type Store struct {
	meta    *mmap.Mapping
	forward *mmap.Mapping
	reverse *mmap.Mapping

	count   int
	records []byte // fixed-stride table view into meta
	arena   []byte // string arena view into meta
}

// Open maps the three store files under dir and validates the metadata
// header. The mappings are held until Close.
func Open(dir string) (*Store, error) {
	var meta, fwd, rev *mmap.Mapping

	// The three files are independent; map them concurrently.
	var g errgroup.Group
	g.Go(func() (err error) {
		meta, err = mmap.Open(filepath.Join(dir, MetadataFile))
		return err
	})
	g.Go(func() (err error) {
		fwd, err = mmap.Open(filepath.Join(dir, ForwardGraphFile))
		return err
	})
	g.Go(func() (err error) {
		rev, err = mmap.Open(filepath.Join(dir, ReverseGraphFile))
		return err
	})
	if err := g.Wait(); err != nil {
		for _, m := range []*mmap.Mapping{meta, fwd, rev} {
			if m != nil {
				_ = m.Close()
			}
		}
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{meta: meta, forward: fwd, reverse: rev}
	if err := s.parseHeader(); err != nil {
		_ = s.Close()
		return nil, err
	}

	// Graph traversal touches adjacency blocks in random order.
	_ = fwd.Advise(mmap.AccessRandom)
	_ = rev.Advise(mmap.AccessRandom)
	// The record table is binary-searched; the arena is read on demand.
	_ = meta.Advise(mmap.AccessRandom)

	return s, nil
}

func (s *Store) parseHeader() error {
	data := s.meta.Bytes()
	if len(data) < HeaderSize {
		return corruptf(MetadataFile, 0, model.ArtistID{}, "file shorter than header (%d bytes)", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		return fmt.Errorf("%w: got 0x%08X", ErrInvalidMagic, magic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return fmt.Errorf("%w: got 0x%08X", ErrInvalidVersion, version)
	}

	count := int(binary.LittleEndian.Uint32(data[8:12]))
	tableEnd := HeaderSize + count*RecordSize
	if tableEnd > len(data) {
		return corruptf(MetadataFile, int64(HeaderSize), model.ArtistID{},
			"record table overflows file: %d records need %d bytes, have %d", count, tableEnd, len(data))
	}

	s.count = count
	s.records = data[HeaderSize:tableEnd]
	s.arena = data[tableEnd:]
	return nil
}

// Close releases the three mappings. The engine guarantees no search holds a
// reference past shutdown.
func (s *Store) Close() error {
	var firstErr error
	for _, m := range []*mmap.Mapping{s.meta, s.forward, s.reverse} {
		if m == nil {
			continue
		}
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Count returns the number of artists in the store.
func (s *Store) Count() int {
	return s.count
}

// MappedBytes returns the mapped sizes of the metadata, forward and reverse
// files, for observability.
func (s *Store) MappedBytes() (meta, forward, reverse int64) {
	return int64(s.meta.Size()), int64(s.forward.Size()), int64(s.reverse.Size())
}

// row returns the raw record bytes at index i without bounds checking beyond
// the table view itself.
func (s *Store) row(i int) []byte {
	return s.records[i*RecordSize : (i+1)*RecordSize]
}

// ID returns the artist id at record index i without decoding the rest of
// the record.
func (s *Store) ID(i int) model.ArtistID {
	var id model.ArtistID
	copy(id[:], s.row(i)[recIDOff:recIDOff+16])
	return id
}

// Find locates the record index of id by binary search over the id-sorted
// table. The second return is false if the id has no record.
func (s *Store) Find(id model.ArtistID) (int, bool) {
	i := sort.Search(s.count, func(i int) bool {
		return bytes.Compare(s.row(i)[recIDOff:recIDOff+16], id[:]) >= 0
	})
	if i < s.count && bytes.Equal(s.row(i)[recIDOff:recIDOff+16], id[:]) {
		return i, true
	}
	return 0, false
}

// Record decodes the full metadata record at index i.
func (s *Store) Record(i int) (Record, error) {
	if i < 0 || i >= s.count {
		return Record{}, fmt.Errorf("%w: record index %d of %d", ErrUnknownArtist, i, s.count)
	}
	row := s.row(i)

	rec := Record{
		ForwardOffset: binary.LittleEndian.Uint64(row[recFwdOff : recFwdOff+8]),
		ReverseOffset: binary.LittleEndian.Uint64(row[recRevOff : recRevOff+8]),
	}
	copy(rec.ID[:], row[recIDOff:recIDOff+16])

	nameOff := int(binary.LittleEndian.Uint32(row[recNameOff : recNameOff+4]))
	nameLen := int(binary.LittleEndian.Uint16(row[recNameLenOff : recNameLenOff+2]))
	urlOff := int(binary.LittleEndian.Uint32(row[recURLOff : recURLOff+4]))
	urlLen := int(binary.LittleEndian.Uint16(row[recURLLenOff : recURLLenOff+2]))

	if nameOff+nameLen > len(s.arena) || urlOff+urlLen > len(s.arena) {
		return Record{}, corruptf(MetadataFile, int64(HeaderSize+i*RecordSize), rec.ID,
			"string offsets overflow arena (name %d+%d, url %d+%d, arena %d)",
			nameOff, nameLen, urlOff, urlLen, len(s.arena))
	}

	rec.Name = string(s.arena[nameOff : nameOff+nameLen])
	rec.URL = string(s.arena[urlOff : urlOff+urlLen])
	return rec, nil
}

// Artist returns the display metadata at record index i.
func (s *Store) Artist(i int) (model.Artist, error) {
	rec, err := s.Record(i)
	if err != nil {
		return model.Artist{}, err
	}
	return model.Artist{ID: rec.ID, Name: rec.Name, URL: rec.URL}, nil
}

// Lookup resolves an artist id to its decoded record.
func (s *Store) Lookup(id model.ArtistID) (Record, error) {
	i, ok := s.Find(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownArtist, id)
	}
	return s.Record(i)
}

// Neighbors opens the adjacency block of record index i in the given
// direction. The returned iterator streams (neighbor id, similarity) pairs
// directly from the mapping, truncated to maxCount entries and stopping at
// the first entry below minSimilarity.
func (s *Store) Neighbors(i int, dir model.Direction, minSimilarity float32, maxCount int) (NeighborIterator, error) {
	if i < 0 || i >= s.count {
		return NeighborIterator{}, fmt.Errorf("%w: record index %d of %d", ErrUnknownArtist, i, s.count)
	}
	row := s.row(i)

	var (
		offset uint64
		data   []byte
		file   string
	)
	if dir == model.Reverse {
		offset = binary.LittleEndian.Uint64(row[recRevOff : recRevOff+8])
		data = s.reverse.Bytes()
		file = ReverseGraphFile
	} else {
		offset = binary.LittleEndian.Uint64(row[recFwdOff : recFwdOff+8])
		data = s.forward.Bytes()
		file = ForwardGraphFile
	}

	id := s.ID(i)
	if offset+4 > uint64(len(data)) {
		return NeighborIterator{}, corruptf(file, int64(offset), id,
			"block offset out of bounds (file %d bytes)", len(data))
	}

	count := binary.LittleEndian.Uint32(data[offset : offset+4])
	entriesStart := offset + 4
	entriesEnd := entriesStart + uint64(count)*NeighborSize
	if entriesEnd > uint64(len(data)) {
		return NeighborIterator{}, corruptf(file, int64(offset), id,
			"block count %d overflows file size %d", count, len(data))
	}

	remaining := int(count)
	if maxCount >= 0 && maxCount < remaining {
		remaining = maxCount
	}

	return NeighborIterator{
		entries:   data[entriesStart:entriesEnd],
		remaining: remaining,
		minSim:    minSimilarity,
	}, nil
}
