// Package artistpath is a pathfinding engine over a directed, weighted
// similarity graph of music artists.
//
// The store is three immutable files built offline: a metadata file (artist
// records and a string arena) and two graph files (forward and reverse
// adjacency, each block sorted by similarity descending). The engine maps
// them once at startup and streams adjacency blocks straight out of the
// mappings, so working sets larger than RAM stay queryable on commodity
// hardware.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, err := artistpath.Open(ctx, "./data",
//	    artistpath.WithSearchWorkers(8),
//	    artistpath.WithRequestDeadline(5*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	from, _ := eng.ResolveName(ctx, "radiohead", 1)
//	to, _ := eng.ResolveName(ctx, "aphex twin", 1)
//
//	res, err := eng.FindPath(ctx, from[0].ID, to[0].ID, artistpath.SearchParams{
//	    MinSimilarity: 0.1,
//	    MaxRelations:  50,
//	    Budget:        5000,
//	    Algorithm:     model.Weighted,
//	})
//
// # Algorithms
//
// Two algorithms, selected per query:
//
//   - BFS: bidirectional breadth-first search, minimum hop count
//   - Weighted: Dijkstra-style relaxation with edge cost -log(similarity),
//     maximizing the product of similarities along the path
//
// Both run point-to-point (FindPath) or as single-source bounded
// exploration (ExploreForward, ExploreReverse). Every query is subject to a
// similarity floor, a per-node fan-out cap and a visit budget; budget
// exhaustion, cancellation and "no path" are structured outcomes with
// partial statistics, not errors.
//
// # Cloud bootstrap
//
// A data directory can be populated from object storage at startup:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", "artistpath/v3")
//	eng, err := artistpath.Open(ctx, "./data", artistpath.WithBlobStore(s3Store))
package artistpath
