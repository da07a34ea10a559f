// Package nameindex resolves user-supplied text to artist record indices.
//
// The index is built once at startup from the metadata table and is
// read-only afterwards. Exact lookup is a hash map over normalized names; a
// trigram inverted index over Roaring bitmaps keeps substring queries of three
// or more bytes responsive at catalog scale (~850k names) without a linear
// scan per query; shorter queries scan the name table.
package nameindex

import (
	"math/rand"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/malbiruk/artistpath/persistence"
)

// minTrigramQuery is the shortest query the trigram index can serve; shorter
// queries fall back to a scan over the name table.
const minTrigramQuery = 3

// Index maps normalized artist names to dense record indices.
type Index struct {
	names    []string            // normalized name per record index
	exact    map[string][]uint32 // normalized name -> record indices
	trigrams map[uint32]*roaring.Bitmap

	mu  sync.Mutex
	rng *rand.Rand
}

// Build constructs the index from the store's metadata table, sharding the
// scan across workers. Deterministic: shard results are merged in record
// order.
func Build(store *persistence.Store, workers int) (*Index, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	count := store.Count()
	if workers > count {
		workers = 1
	}

	type shard struct {
		start, end int
		names      []string
		trigrams   map[uint32]*roaring.Bitmap
	}

	shards := make([]*shard, workers)
	chunk := (count + workers - 1) / workers
	for i := range shards {
		start := i * chunk
		end := start + chunk
		if end > count {
			end = count
		}
		shards[i] = &shard{start: start, end: end}
	}

	var g errgroup.Group
	for _, sh := range shards {
		g.Go(func() error {
			sh.names = make([]string, 0, sh.end-sh.start)
			sh.trigrams = make(map[uint32]*roaring.Bitmap)
			for i := sh.start; i < sh.end; i++ {
				rec, err := store.Record(i)
				if err != nil {
					return err
				}
				name := Clean(rec.Name)
				sh.names = append(sh.names, name)
				for _, tg := range trigramsOf(name) {
					bm, ok := sh.trigrams[tg]
					if !ok {
						bm = roaring.New()
						sh.trigrams[tg] = bm
					}
					bm.Add(uint32(i))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{
		names:    make([]string, 0, count),
		exact:    make(map[string][]uint32, count),
		trigrams: make(map[uint32]*roaring.Bitmap),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, sh := range shards {
		for j, name := range sh.names {
			ref := uint32(sh.start + j)
			idx.names = append(idx.names, name)
			idx.exact[name] = append(idx.exact[name], ref)
		}
		for tg, bm := range sh.trigrams {
			if existing, ok := idx.trigrams[tg]; ok {
				existing.Or(bm)
			} else {
				idx.trigrams[tg] = bm
			}
		}
	}

	return idx, nil
}

// Len returns the number of indexed artists.
func (idx *Index) Len() int {
	return len(idx.names)
}

// NameOf returns the normalized name at a record index.
func (idx *Index) NameOf(ref uint32) string {
	return idx.names[ref]
}

// ResolveExact returns the record indices whose normalized name equals the
// normalized query. Multiple artists may share a name; all are returned, in
// record order.
func (idx *Index) ResolveExact(query string) []uint32 {
	refs := idx.exact[Clean(query)]
	out := make([]uint32, len(refs))
	copy(out, refs)
	return out
}

// SearchSubstring returns up to limit record indices whose normalized name
// contains the normalized query. Exact matches rank first, then prefix
// matches, then other substring matches; ties break by lexicographic name,
// then record index.
func (idx *Index) SearchSubstring(query string, limit int) []uint32 {
	q := Clean(query)
	if q == "" || limit <= 0 {
		return nil
	}

	type match struct {
		ref  uint32
		rank int
	}
	var matches []match
	consider := func(ref uint32) {
		name := idx.names[ref]
		pos := strings.Index(name, q)
		if pos < 0 {
			return
		}
		rank := 2
		switch {
		case name == q:
			rank = 0
		case pos == 0:
			rank = 1
		}
		matches = append(matches, match{ref: ref, rank: rank})
	}

	if len(q) >= minTrigramQuery {
		candidates := idx.trigramCandidates(q)
		if candidates == nil {
			return nil
		}
		it := candidates.Iterator()
		for it.HasNext() {
			consider(it.Next())
		}
	} else {
		for ref := range idx.names {
			consider(uint32(ref))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		ni, nj := idx.names[matches[i].ref], idx.names[matches[j].ref]
		if ni != nj {
			return ni < nj
		}
		return matches[i].ref < matches[j].ref
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]uint32, len(matches))
	for i, m := range matches {
		out[i] = m.ref
	}
	return out
}

// trigramCandidates intersects the bitmaps of every trigram in q. A nil
// return means some trigram never occurs, so no name can contain q.
func (idx *Index) trigramCandidates(q string) *roaring.Bitmap {
	tgs := trigramsOf(q)
	bitmaps := make([]*roaring.Bitmap, 0, len(tgs))
	for _, tg := range tgs {
		bm, ok := idx.trigrams[tg]
		if !ok {
			return nil
		}
		bitmaps = append(bitmaps, bm)
	}
	if len(bitmaps) == 0 {
		return nil
	}
	return roaring.FastAnd(bitmaps...)
}

// Random returns a uniformly random record index in O(1).
func (idx *Index) Random() uint32 {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(idx.names) == 0 {
		return 0
	}
	return uint32(idx.rng.Intn(len(idx.names)))
}

// trigramsOf returns the distinct byte trigrams of s packed into uint32 keys.
func trigramsOf(s string) []uint32 {
	if len(s) < minTrigramQuery {
		return nil
	}
	seen := make(map[uint32]struct{}, len(s))
	out := make([]uint32, 0, len(s))
	for i := 0; i+minTrigramQuery <= len(s); i++ {
		tg := uint32(s[i])<<16 | uint32(s[i+1])<<8 | uint32(s[i+2])
		if _, dup := seen[tg]; dup {
			continue
		}
		seen[tg] = struct{}{}
		out = append(out, tg)
	}
	return out
}
