package model

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// ArtistID is the 128-bit identifier of an artist (a MusicBrainz UUID).
// It is opaque to the engine; only byte equality, ordering and hashing are used.
type ArtistID uuid.UUID

// ParseArtistID parses the canonical textual UUID form.
func ParseArtistID(s string) (ArtistID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ArtistID{}, fmt.Errorf("artist id: %w", err)
	}
	return ArtistID(u), nil
}

// ArtistIDFromBytes copies a raw 16-byte identifier.
func ArtistIDFromBytes(b []byte) (ArtistID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return ArtistID{}, fmt.Errorf("artist id: %w", err)
	}
	return ArtistID(u), nil
}

// String returns the canonical textual UUID form.
func (id ArtistID) String() string {
	return uuid.UUID(id).String()
}

// Compare orders ids by raw byte value. Used as the deterministic tie-break
// in weighted search.
func (id ArtistID) Compare(other ArtistID) int {
	return bytes.Compare(id[:], other[:])
}

// IsZero reports whether the id is the all-zero UUID.
func (id ArtistID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ArtistID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ArtistID) UnmarshalText(text []byte) error {
	parsed, err := ParseArtistID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Artist is the display metadata of a single artist.
type Artist struct {
	ID   ArtistID `json:"id"`
	Name string   `json:"name"`
	URL  string   `json:"url"`
}

// Direction selects which of the two graph files a traversal reads.
type Direction int

const (
	// Forward follows outgoing edges: who this artist lists as similar.
	Forward Direction = iota
	// Reverse follows incoming edges: who lists this artist as similar.
	Reverse
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Algorithm selects the search strategy.
type Algorithm int

const (
	// BFS is unweighted breadth-first search minimizing hop count.
	BFS Algorithm = iota
	// Weighted is Dijkstra-style search maximizing the product of
	// similarities along the path.
	Weighted
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	if a == Weighted {
		return "weighted"
	}
	return "bfs"
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "bfs", "":
		*a = BFS
	case "weighted":
		*a = Weighted
	default:
		return fmt.Errorf("unknown algorithm %q", text)
	}
	return nil
}

// Outcome classifies how a search ended. Unknown artists, invalid parameters
// and store corruption are Go errors instead; an Outcome is always accompanied
// by valid partial statistics.
type Outcome int

const (
	// Found means a path was found (or, for exploration, the neighborhood
	// was produced).
	Found Outcome = iota
	// NotFound means the search space was exhausted without reaching the
	// target.
	NotFound
	// BudgetExceeded means the visit budget was reached first.
	BudgetExceeded
	// PathTooLong means a path exists but has more nodes than the budget
	// allows.
	PathTooLong
	// Cancelled means the deadline or the caller's context tripped.
	Cancelled
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case BudgetExceeded:
		return "budget_exceeded"
	case PathTooLong:
		return "path_too_long"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// PathStep is one hop of a path. Similarity is the weight of the edge by
// which the step was reached; it is zero for the first step.
type PathStep struct {
	Artist     Artist  `json:"artist"`
	Similarity float32 `json:"similarity"`
}

// Node is a subgraph member. Layer is the BFS depth at which exploration
// discovered the node (0 for the center/source); weighted searches record the
// hop count of the cheapest path instead, expanded path results the position
// on the path (len(path) for added neighbors), and point-to-point BFS results
// leave it 0. Cost is the cumulative -log(similarity)
// at which weighted search finalized the node; it is zero for BFS results.
type Node struct {
	Artist     Artist  `json:"artist"`
	Layer      int     `json:"layer"`
	Similarity float32 `json:"similarity"`
	Cost       float64 `json:"cost,omitempty"`
}

// Edge is a directed similarity edge in its natural orientation: From lists
// To as similar with the given score.
type Edge struct {
	From       ArtistID `json:"from"`
	To         ArtistID `json:"to"`
	Similarity float32  `json:"similarity"`
}

// Subgraph is the set of visited nodes plus the edges among them that satisfy
// the caller's thresholds. Every edge endpoint is a member of Nodes.
type Subgraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Stats reports the work a search performed.
type Stats struct {
	DurationMillis  int64 `json:"duration_ms"`
	ArtistsVisited  int   `json:"artists_visited"`
	EdgesConsidered int   `json:"edges_considered"`
}

// PathResult is the outcome of a point-to-point search.
type PathResult struct {
	Outcome  Outcome    `json:"outcome"`
	Path     []PathStep `json:"path,omitempty"`
	Subgraph Subgraph   `json:"subgraph"`
	Stats    Stats      `json:"stats"`

	// MinimumBudget is set on PathTooLong: the smallest budget that would
	// let the found path through.
	MinimumBudget int `json:"minimum_budget,omitempty"`
}

// ExploreResult is the outcome of a single-source bounded exploration.
type ExploreResult struct {
	Outcome  Outcome  `json:"outcome"`
	Center   Artist   `json:"center"`
	Subgraph Subgraph `json:"subgraph"`
	Stats    Stats    `json:"stats"`
}
