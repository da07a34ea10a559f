package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/malbiruk/artistpath/model"
)

// WriteStore builds the three store files under dir from in-memory artist
// metadata and a directed edge list. The upstream crawl pipeline produces
// its files through this writer; tests use it to build fixtures.
//
// Artists are written in id order (the required on-disk order for binary
// search); adjacency entries are written similarity-descending with ties
// broken by neighbor id so identical inputs produce identical files.
func WriteStore(dir string, artists []model.Artist, edges []model.Edge) error {
	if len(artists) > math.MaxUint32 {
		return fmt.Errorf("write store: %d artists overflow u32 count", len(artists))
	}

	sorted := make([]model.Artist, len(artists))
	copy(sorted, artists)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Compare(sorted[j].ID) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return fmt.Errorf("write store: duplicate artist id %s", sorted[i].ID)
		}
	}

	index := make(map[model.ArtistID]int, len(sorted))
	for i, a := range sorted {
		if len(a.Name) > math.MaxUint16 {
			return fmt.Errorf("write store: name of %s exceeds %d bytes", a.ID, math.MaxUint16)
		}
		if len(a.URL) > math.MaxUint16 {
			return fmt.Errorf("write store: url of %s exceeds %d bytes", a.ID, math.MaxUint16)
		}
		index[a.ID] = i
	}

	forward := make([][]Neighbor, len(sorted))
	reverse := make([][]Neighbor, len(sorted))
	for _, e := range edges {
		if math.IsNaN(float64(e.Similarity)) || e.Similarity < 0 || e.Similarity > 1 {
			return fmt.Errorf("write store: edge %s -> %s has similarity %v outside [0,1]",
				e.From, e.To, e.Similarity)
		}
		from, ok := index[e.From]
		if !ok {
			return fmt.Errorf("write store: edge references unknown artist %s", e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return fmt.Errorf("write store: edge references unknown artist %s", e.To)
		}
		forward[from] = append(forward[from], Neighbor{ID: e.To, Similarity: e.Similarity})
		reverse[to] = append(reverse[to], Neighbor{ID: e.From, Similarity: e.Similarity})
	}
	for _, adj := range [2][][]Neighbor{forward, reverse} {
		for _, block := range adj {
			sortNeighbors(block)
		}
	}

	fwdOffsets, err := writeGraphFile(filepath.Join(dir, ForwardGraphFile), forward)
	if err != nil {
		return err
	}
	revOffsets, err := writeGraphFile(filepath.Join(dir, ReverseGraphFile), reverse)
	if err != nil {
		return err
	}

	return writeMetadataFile(filepath.Join(dir, MetadataFile), sorted, fwdOffsets, revOffsets)
}

func sortNeighbors(block []Neighbor) {
	sort.Slice(block, func(i, j int) bool {
		if block[i].Similarity != block[j].Similarity {
			return block[i].Similarity > block[j].Similarity
		}
		return block[i].ID.Compare(block[j].ID) < 0
	})
}

func writeGraphFile(path string, adjacency [][]Neighbor) ([]uint64, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("write graph file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	offsets := make([]uint64, len(adjacency))
	var pos uint64

	var scratch [NeighborSize]byte
	for i, block := range adjacency {
		offsets[i] = pos

		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(block)))
		if _, err := w.Write(scratch[:4]); err != nil {
			return nil, fmt.Errorf("write graph file: %w", err)
		}
		pos += 4

		for _, n := range block {
			copy(scratch[0:16], n.ID[:])
			binary.LittleEndian.PutUint32(scratch[16:20], math.Float32bits(n.Similarity))
			if _, err := w.Write(scratch[:]); err != nil {
				return nil, fmt.Errorf("write graph file: %w", err)
			}
			pos += NeighborSize
		}
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("write graph file: %w", err)
	}
	return offsets, f.Close()
}

func writeMetadataFile(path string, artists []model.Artist, fwdOffsets, revOffsets []uint64) error {
	var arena bytes.Buffer
	type stringRef struct {
		off uint32
		len uint16
	}
	intern := make(map[string]stringRef)
	add := func(s string) (stringRef, error) {
		if ref, ok := intern[s]; ok {
			return ref, nil
		}
		if arena.Len()+len(s) > math.MaxUint32 {
			return stringRef{}, fmt.Errorf("write metadata: string arena overflows u32 offsets")
		}
		ref := stringRef{off: uint32(arena.Len()), len: uint16(len(s))}
		arena.WriteString(s)
		intern[s] = ref
		return ref, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [HeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], MagicNumber)
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(artists)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	var row [RecordSize]byte
	for i, a := range artists {
		nameRef, err := add(a.Name)
		if err != nil {
			return err
		}
		urlRef, err := add(a.URL)
		if err != nil {
			return err
		}

		copy(row[recIDOff:recIDOff+16], a.ID[:])
		binary.LittleEndian.PutUint64(row[recFwdOff:recFwdOff+8], fwdOffsets[i])
		binary.LittleEndian.PutUint64(row[recRevOff:recRevOff+8], revOffsets[i])
		binary.LittleEndian.PutUint32(row[recNameOff:recNameOff+4], nameRef.off)
		binary.LittleEndian.PutUint16(row[recNameLenOff:recNameLenOff+2], nameRef.len)
		binary.LittleEndian.PutUint32(row[recURLOff:recURLOff+4], urlRef.off)
		binary.LittleEndian.PutUint16(row[recURLLenOff:recURLLenOff+2], urlRef.len)

		if _, err := w.Write(row[:]); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}

	if _, err := w.Write(arena.Bytes()); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return f.Close()
}
