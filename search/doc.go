// Package search implements the two traversal algorithms over the
// memory-mapped graph store.
//
//   - Unweighted shortest path: bidirectional BFS, expanding the smaller
//     frontier each round, minimizing hop count.
//   - Weighted best-similarity path: Dijkstra-style relaxation with edge cost
//     -log(similarity), so the cheapest path maximizes the product of
//     similarities. Ties break on fewer hops, then lexicographic neighbor id.
//
// Both algorithms run in two modes: point-to-point between two artists, and
// single-source bounded exploration producing a neighborhood.
//
// Every invocation respects a visit budget, a per-node fan-out cap and a
// similarity floor, and checks the context at every node pop so deadlines and
// cancellation trip promptly. Results are reported in dense record indices;
// the assembler materializes display metadata.
package search
