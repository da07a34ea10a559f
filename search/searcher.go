package search

import (
	"sync"

	"github.com/malbiruk/artistpath/internal/queue"
	"github.com/malbiruk/artistpath/internal/visited"
	"github.com/malbiruk/artistpath/model"
)

// Params are the common knobs of every search invocation. The engine
// validates ranges before any I/O.
type Params struct {
	// MinSimilarity is the floor applied to every edge considered.
	MinSimilarity float32
	// MaxRelations caps the fan-out considered at any single node.
	MaxRelations int
	// Budget caps the number of distinct artists the search may visit.
	Budget int
}

// Step is one hop of a path in record-index space. Similarity is the weight
// of the edge by which the step was reached (zero for the first step).
type Step struct {
	Ref        uint32
	Similarity float32
}

// NodeInfo describes one visited node for result assembly.
type NodeInfo struct {
	Ref        uint32
	Layer      int
	Similarity float32
	Cost       float64
}

// Result is the raw outcome of a traversal, before metadata enrichment.
type Result struct {
	Outcome model.Outcome
	Path    []Step
	Nodes   []NodeInfo
	Visited int
	Edges   int

	// MinimumBudget is not set by the traversals in this package, which
	// never report PathTooLong; the engine computes the minimum budget on
	// model.PathResult.
	MinimumBudget int
}

// Searcher owns the scratch memory of one traversal: visited bitsets, the
// relaxation heap and frontier buffers. It is not thread-safe; a search
// acquires one from the pool, uses it from a single goroutine and releases
// it on return.
type Searcher struct {
	side    *visited.Set // visited on the source side of bidirectional BFS
	other   *visited.Set // visited on the opposite side of bidirectional BFS
	union   *visited.Set // distinct artists visited across both sides
	heap    *queue.CostQueue
	sideFr  []frontierEntry
	otherFr []frontierEntry
}

type frontierEntry struct {
	ref   uint32
	layer int
}

var searcherPool = sync.Pool{
	New: func() any {
		return &Searcher{
			side:  visited.New(1024),
			other: visited.New(1024),
			union: visited.New(1024),
			heap:  queue.NewCostQueue(128),
		}
	},
}

func acquireSearcher(maxNodes int) *Searcher {
	s := searcherPool.Get().(*Searcher)
	s.side.EnsureCapacity(maxNodes)
	s.other.EnsureCapacity(maxNodes)
	s.union.EnsureCapacity(maxNodes)
	return s
}

func releaseSearcher(s *Searcher) {
	s.side.Reset()
	s.other.Reset()
	s.union.Reset()
	s.heap.Reset()
	s.sideFr = s.sideFr[:0]
	s.otherFr = s.otherFr[:0]
	searcherPool.Put(s)
}
