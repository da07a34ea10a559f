package search

import (
	"context"
	"math"

	"github.com/malbiruk/artistpath/internal/queue"
	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

// costState tracks the best-known cost and hop count of a relaxed node.
type costState struct {
	cost float64
	hops int
}

// FindPathWeighted runs Dijkstra-style relaxation from source until target
// is popped. Edge cost is -log(similarity), so minimizing cumulative cost
// maximizes the product of similarities; ties prefer fewer hops, then
// lexicographic neighbor id. Because every cost is non-negative, the first
// pop of the target is optimal.
func FindPathWeighted(ctx context.Context, store *persistence.Store, source, target uint32, p Params) (Result, error) {
	if source == target {
		return Result{
			Outcome: model.Found,
			Path:    []Step{{Ref: source}},
			Nodes:   []NodeInfo{{Ref: source, Similarity: 1}},
			Visited: 1,
		}, nil
	}

	s := acquireSearcher(store.Count())
	defer releaseSearcher(s)

	var (
		res    Result
		dist   = map[uint32]costState{source: {}}
		parent = make(map[uint32]edgeTo)
		nodes  []NodeInfo
	)

	s.heap.Push(queue.Item{Node: store.ID(int(source)), Ref: source})

	for s.heap.Len() > 0 {
		if ctx.Err() != nil {
			res.Outcome = model.Cancelled
			res.Visited = s.union.Count()
			res.Nodes = nodes
			return res, nil
		}

		item := s.heap.Pop()
		if s.union.Visited(item.Ref) {
			continue // stale heap entry, already finalized cheaper
		}
		s.union.Visit(item.Ref)
		nodes = append(nodes, NodeInfo{
			Ref:        item.Ref,
			Layer:      item.Hops,
			Similarity: finalSimilarity(parent, item.Ref, source),
			Cost:       item.Cost,
		})

		if item.Ref == target {
			res.Outcome = model.Found
			res.Visited = s.union.Count()
			res.Nodes = nodes
			res.Path = walkParents(parent, source, target)
			return res, nil
		}

		if s.union.Count() >= p.Budget {
			res.Outcome = model.BudgetExceeded
			res.Visited = s.union.Count()
			res.Nodes = nodes
			return res, nil
		}

		if err := relaxNeighbors(store, s, item, dist, parent, p, &res.Edges); err != nil {
			return Result{}, err
		}
	}

	res.Outcome = model.NotFound
	res.Visited = s.union.Count()
	res.Nodes = nodes
	return res, nil
}

// ExploreWeighted finalizes up to budget nodes in increasing cost order and
// returns them with the cost at which each was finalized.
func ExploreWeighted(ctx context.Context, store *persistence.Store, center uint32, dir model.Direction, p Params) (Result, error) {
	s := acquireSearcher(store.Count())
	defer releaseSearcher(s)

	var (
		res    Result
		dist   = map[uint32]costState{center: {}}
		parent = make(map[uint32]edgeTo)
	)

	s.heap.Push(queue.Item{Node: store.ID(int(center)), Ref: center})

	for s.heap.Len() > 0 {
		if ctx.Err() != nil {
			res.Outcome = model.Cancelled
			res.Visited = s.union.Count()
			return res, nil
		}

		item := s.heap.Pop()
		if s.union.Visited(item.Ref) {
			continue
		}
		s.union.Visit(item.Ref)
		res.Nodes = append(res.Nodes, NodeInfo{
			Ref:        item.Ref,
			Layer:      item.Hops,
			Similarity: finalSimilarity(parent, item.Ref, center),
			Cost:       item.Cost,
		})

		if s.union.Count() >= p.Budget {
			break
		}

		if err := relaxNeighborsDir(store, s, item, dir, dist, parent, p, &res.Edges); err != nil {
			return Result{}, err
		}
	}

	res.Outcome = model.Found
	res.Visited = s.union.Count()
	return res, nil
}

func relaxNeighbors(store *persistence.Store, s *Searcher, item queue.Item, dist map[uint32]costState, parent map[uint32]edgeTo, p Params, edges *int) error {
	return relaxNeighborsDir(store, s, item, model.Forward, dist, parent, p, edges)
}

func relaxNeighborsDir(store *persistence.Store, s *Searcher, item queue.Item, dir model.Direction, dist map[uint32]costState, parent map[uint32]edgeTo, p Params, edges *int) error {
	it, err := store.Neighbors(int(item.Ref), dir, p.MinSimilarity, p.MaxRelations)
	if err != nil {
		return err
	}
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		*edges++

		// The floor excludes zero-similarity edges from the weighted
		// transform; -log(0) is not a usable cost.
		if n.Similarity <= 0 {
			continue
		}

		refInt, found := store.Find(n.ID)
		if !found {
			continue
		}
		nref := uint32(refInt)
		if s.union.Visited(nref) {
			continue
		}

		next := costState{
			cost: item.Cost - math.Log(float64(n.Similarity)),
			hops: item.Hops + 1,
		}
		existing, seen := dist[nref]
		if seen && (existing.cost < next.cost ||
			(existing.cost == next.cost && existing.hops <= next.hops)) {
			continue
		}

		dist[nref] = next
		parent[nref] = edgeTo{parent: item.Ref, sim: n.Similarity}
		s.heap.Push(queue.Item{Node: n.ID, Ref: nref, Cost: next.cost, Hops: next.hops})
	}
	return nil
}

// walkParents reconstructs the hop list from the predecessor map.
func walkParents(parent map[uint32]edgeTo, source, target uint32) []Step {
	var path []Step
	cur := target
	for cur != source {
		e := parent[cur]
		path = append(path, Step{Ref: cur, Similarity: e.sim})
		cur = e.parent
	}
	path = append(path, Step{Ref: source})
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func finalSimilarity(parent map[uint32]edgeTo, ref, origin uint32) float32 {
	if ref == origin {
		return 1
	}
	if e, ok := parent[ref]; ok {
		return e.sim
	}
	return 0
}
