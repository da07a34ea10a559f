package search

import (
	"sort"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

// AssemblePath materializes a record-index path into display steps.
func AssemblePath(store *persistence.Store, path []Step) ([]model.PathStep, error) {
	out := make([]model.PathStep, 0, len(path))
	for _, step := range path {
		artist, err := store.Artist(int(step.Ref))
		if err != nil {
			return nil, err
		}
		out = append(out, model.PathStep{Artist: artist, Similarity: step.Similarity})
	}
	return out, nil
}

// AssembleSubgraph materializes visited nodes and enumerates the displayed
// edges: every (u, v, w) with both endpoints visited, w at or above the
// floor, and w within the top maxRelations out of u. Edges are read from the
// adjacency blocks in the given direction but always emitted in their
// natural (source, target, similarity) orientation.
func AssembleSubgraph(store *persistence.Store, nodes []NodeInfo, dir model.Direction, p Params) (model.Subgraph, error) {
	members := make(map[uint32]bool, len(nodes))
	for _, n := range nodes {
		members[n.Ref] = true
	}

	sg := model.Subgraph{Nodes: make([]model.Node, 0, len(nodes))}
	for _, n := range nodes {
		artist, err := store.Artist(int(n.Ref))
		if err != nil {
			return model.Subgraph{}, err
		}
		sg.Nodes = append(sg.Nodes, model.Node{
			Artist:     artist,
			Layer:      n.Layer,
			Similarity: n.Similarity,
			Cost:       n.Cost,
		})

		it, err := store.Neighbors(int(n.Ref), dir, p.MinSimilarity, p.MaxRelations)
		if err != nil {
			return model.Subgraph{}, err
		}
		self := store.ID(int(n.Ref))
		for {
			nb, ok := it.Next()
			if !ok {
				break
			}
			refInt, found := store.Find(nb.ID)
			if !found || !members[uint32(refInt)] {
				continue
			}
			edge := model.Edge{From: self, To: nb.ID, Similarity: nb.Similarity}
			if dir == model.Reverse {
				edge.From, edge.To = nb.ID, self
			}
			sg.Edges = append(sg.Edges, edge)
		}
	}
	return sg, nil
}

// ExpandPathNeighborhood grows a found path into a display neighborhood of
// up to budget nodes. Neighbors of path nodes are prioritized by how many
// path nodes link to them, then by their best similarity, so the densest
// connections are kept when the budget is tight.
func ExpandPathNeighborhood(store *persistence.Store, path []Step, p Params) ([]NodeInfo, error) {
	nodes := make([]NodeInfo, 0, p.Budget)
	onPath := make(map[uint32]bool, len(path))
	for i, step := range path {
		sim := step.Similarity
		if i == 0 {
			sim = 1
		}
		nodes = append(nodes, NodeInfo{Ref: step.Ref, Layer: i, Similarity: sim})
		onPath[step.Ref] = true
	}
	if len(nodes) >= p.Budget {
		return nodes, nil
	}

	type neighborInfo struct {
		ref   uint32
		sim   float32
		links int
	}
	info := make(map[uint32]*neighborInfo)
	for _, step := range path {
		it, err := store.Neighbors(int(step.Ref), model.Forward, p.MinSimilarity, p.MaxRelations)
		if err != nil {
			return nil, err
		}
		for {
			nb, ok := it.Next()
			if !ok {
				break
			}
			refInt, found := store.Find(nb.ID)
			if !found {
				continue
			}
			ref := uint32(refInt)
			if onPath[ref] {
				continue
			}
			ni, ok := info[ref]
			if !ok {
				ni = &neighborInfo{ref: ref}
				info[ref] = ni
			}
			ni.links++
			if nb.Similarity > ni.sim {
				ni.sim = nb.Similarity
			}
		}
	}

	ranked := make([]*neighborInfo, 0, len(info))
	for _, ni := range info {
		ranked = append(ranked, ni)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].links != ranked[j].links {
			return ranked[i].links > ranked[j].links
		}
		if ranked[i].sim != ranked[j].sim {
			return ranked[i].sim > ranked[j].sim
		}
		return ranked[i].ref < ranked[j].ref
	})

	for _, ni := range ranked {
		if len(nodes) >= p.Budget {
			break
		}
		nodes = append(nodes, NodeInfo{Ref: ni.ref, Layer: len(path), Similarity: ni.sim})
	}
	return nodes, nil
}
