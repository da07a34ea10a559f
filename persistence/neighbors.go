package persistence

import (
	"encoding/binary"
	"math"

	"github.com/malbiruk/artistpath/model"
)

// Neighbor is one adjacency entry: the neighboring artist and the similarity
// of the edge.
type Neighbor struct {
	ID         model.ArtistID
	Similarity float32
}

// NeighborIterator is a lazy, single-pass view over one adjacency block.
// It reads entries directly from the mapped file without copying and is
// cheap to abandon mid-way.
//
// Entries are stored sorted by similarity descending, so the iterator stops
// permanently at the first entry below the similarity floor: every entry
// after it is below the floor too.
//
// The zero value is an exhausted iterator.
type NeighborIterator struct {
	entries   []byte
	remaining int
	minSim    float32
	done      bool
}

// Next yields the next qualifying entry. The second return is false once the
// fan-out cap is reached, an entry drops below the floor, or the block is
// exhausted.
func (it *NeighborIterator) Next() (Neighbor, bool) {
	if it.done || it.remaining <= 0 || len(it.entries) < NeighborSize {
		it.done = true
		return Neighbor{}, false
	}

	sim := math.Float32frombits(binary.LittleEndian.Uint32(it.entries[16:20]))
	if sim < it.minSim {
		it.done = true
		return Neighbor{}, false
	}

	var n Neighbor
	copy(n.ID[:], it.entries[0:16])
	n.Similarity = sim

	it.entries = it.entries[NeighborSize:]
	it.remaining--
	return n, true
}
