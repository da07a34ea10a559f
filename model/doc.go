// Package model defines the core types shared across the artistpath engine.
//
// # Identity
//
//   - ArtistID: 128-bit MusicBrainz identifier, carried by value
//
// # Search vocabulary
//
//   - Direction: Forward (outgoing edges) or Reverse (incoming edges)
//   - Algorithm: BFS (fewest hops) or Weighted (best similarity product)
//   - Outcome: how a search ended (Found, NotFound, BudgetExceeded, ...)
//
// # Results
//
//   - PathResult: ordered path, induced subgraph and stats
//   - ExploreResult: bounded neighborhood around a single artist
package model
