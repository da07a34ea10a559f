package search

import (
	"context"

	"github.com/malbiruk/artistpath/internal/visited"
	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

// edgeTo records how a node was first reached on one side of the search.
type edgeTo struct {
	parent uint32
	sim    float32
}

// FindPathBFS runs bidirectional BFS between two record indices, expanding
// the smaller frontier each round. The forward graph is read from the source
// side and the reverse graph from the target side, so an emitted hop a→b
// always means "a lists b as similar".
func FindPathBFS(ctx context.Context, store *persistence.Store, source, target uint32, p Params) (Result, error) {
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
		res       Result
		fwdParent = make(map[uint32]edgeTo)
		revParent = make(map[uint32]edgeTo)
		exhausted bool
	)

	s.side.Visit(source)
	s.other.Visit(target)
	s.union.Visit(source)
	s.union.Visit(target)
	s.sideFr = append(s.sideFr, frontierEntry{ref: source})
	s.otherFr = append(s.otherFr, frontierEntry{ref: target})

	finish := func(outcome model.Outcome) (Result, error) {
		res.Outcome = outcome
		res.Visited = s.union.Count()
		res.Nodes = bfsNodes(s.union, fwdParent, revParent, source, target)
		return res, nil
	}

	for len(s.sideFr) > 0 || len(s.otherFr) > 0 {
		if ctx.Err() != nil {
			return finish(model.Cancelled)
		}

		// Expand the smaller non-empty frontier.
		fromSource := len(s.otherFr) == 0 ||
			(len(s.sideFr) > 0 && len(s.sideFr) <= len(s.otherFr))

		var (
			cur       frontierEntry
			mine      *visited.Set
			theirs    *visited.Set
			parent    map[uint32]edgeTo
			direction model.Direction
		)
		if fromSource {
			cur, s.sideFr = s.sideFr[0], s.sideFr[1:]
			mine, theirs, parent, direction = s.side, s.other, fwdParent, model.Forward
		} else {
			cur, s.otherFr = s.otherFr[0], s.otherFr[1:]
			mine, theirs, parent, direction = s.other, s.side, revParent, model.Reverse
		}

		// Meeting node: popped on one side, already visited by the other.
		if theirs.Visited(cur.ref) {
			res.Outcome = model.Found
			res.Visited = s.union.Count()
			res.Path = spliceBidirectional(fwdParent, revParent, source, target, cur.ref)
			res.Nodes = bfsNodes(s.union, fwdParent, revParent, source, target)
			return res, nil
		}

		it, err := store.Neighbors(int(cur.ref), direction, p.MinSimilarity, p.MaxRelations)
		if err != nil {
			return Result{}, err
		}
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			res.Edges++

			ref, found := store.Find(n.ID)
			if !found {
				continue // dangling neighbor, tolerated like the store builder's input
			}
			nref := uint32(ref)
			if mine.Visited(nref) {
				continue
			}
			if !s.union.Visited(nref) {
				if s.union.Count() >= p.Budget {
					// No room for new artists; nodes already seen by the
					// other side may still be linked to enable a meeting.
					exhausted = true
					continue
				}
				s.union.Visit(nref)
			}
			mine.Visit(nref)
			parent[nref] = edgeTo{parent: cur.ref, sim: n.Similarity}
			if fromSource {
				s.sideFr = append(s.sideFr, frontierEntry{ref: nref})
			} else {
				s.otherFr = append(s.otherFr, frontierEntry{ref: nref})
			}
		}
	}

	if exhausted {
		return finish(model.BudgetExceeded)
	}
	return finish(model.NotFound)
}

// spliceBidirectional joins the two half-paths at the meeting node into a
// single source→target hop list.
func spliceBidirectional(fwdParent, revParent map[uint32]edgeTo, source, target, meeting uint32) []Step {
	// Walk meeting→source on the forward side, then reverse.
	var head []Step
	cur := meeting
	for cur != source {
		e := fwdParent[cur]
		head = append(head, Step{Ref: cur, Similarity: e.sim})
		cur = e.parent
	}
	head = append(head, Step{Ref: source})
	for i, j := 0, len(head)-1; i < j; i, j = i+1, j-1 {
		head[i], head[j] = head[j], head[i]
	}

	// Walk meeting→target on the reverse side; revParent records the node
	// one hop closer to the target, with the similarity of cur→next.
	cur = meeting
	for cur != target {
		e := revParent[cur]
		head = append(head, Step{Ref: e.parent, Similarity: e.sim})
		cur = e.parent
	}
	return head
}

// bfsNodes flattens the visited union into NodeInfos, attaching the
// discovery similarity where one side recorded it.
func bfsNodes(union *visited.Set, fwdParent, revParent map[uint32]edgeTo, source, target uint32) []NodeInfo {
	members := union.Members()
	nodes := make([]NodeInfo, 0, len(members))
	for _, ref := range members {
		info := NodeInfo{Ref: ref}
		if ref == source || ref == target {
			info.Similarity = 1
		} else if e, ok := fwdParent[ref]; ok {
			info.Similarity = e.sim
		} else if e, ok := revParent[ref]; ok {
			info.Similarity = e.sim
		}
		nodes = append(nodes, info)
	}
	return nodes
}

// ExploreBFS expands layer by layer from center in the given direction until
// the discovered set reaches the budget. The BFS layer of each node is
// recorded for presentation.
func ExploreBFS(ctx context.Context, store *persistence.Store, center uint32, dir model.Direction, p Params) (Result, error) {
	s := acquireSearcher(store.Count())
	defer releaseSearcher(s)

	var res Result

	s.union.Visit(center)
	res.Nodes = append(res.Nodes, NodeInfo{Ref: center, Layer: 0, Similarity: 1})
	s.sideFr = append(s.sideFr, frontierEntry{ref: center, layer: 0})

	for len(s.sideFr) > 0 && s.union.Count() < p.Budget {
		if ctx.Err() != nil {
			res.Outcome = model.Cancelled
			res.Visited = s.union.Count()
			return res, nil
		}

		var cur frontierEntry
		cur, s.sideFr = s.sideFr[0], s.sideFr[1:]

		it, err := store.Neighbors(int(cur.ref), dir, p.MinSimilarity, p.MaxRelations)
		if err != nil {
			return Result{}, err
		}
		for {
			n, ok := it.Next()
			if !ok {
				break
			}
			res.Edges++

			ref, found := store.Find(n.ID)
			if !found {
				continue
			}
			nref := uint32(ref)
			if s.union.Visited(nref) {
				continue
			}
			if s.union.Count() >= p.Budget {
				break
			}
			s.union.Visit(nref)
			res.Nodes = append(res.Nodes, NodeInfo{
				Ref:        nref,
				Layer:      cur.layer + 1,
				Similarity: n.Similarity,
			})
			s.sideFr = append(s.sideFr, frontierEntry{ref: nref, layer: cur.layer + 1})
		}
	}

	res.Outcome = model.Found
	res.Visited = s.union.Count()
	return res, nil
}
