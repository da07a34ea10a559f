package testutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
)

// Fixture is a small on-disk store with named artists.
type Fixture struct {
	Dir     string
	Store   *persistence.Store
	IDs     map[string]model.ArtistID
	Artists []model.Artist
	Edges   []model.Edge
}

// NamedID returns a stable, readable id for a single-letter artist name.
// The letter lands in the first byte so fixture ids sort alphabetically.
func NamedID(name string) model.ArtistID {
	var id model.ArtistID
	copy(id[:], name)
	id[6] = 0x40 // version 4 shape, keeps String() canonical-looking
	id[8] = 0x80
	return id
}

// BuildStore writes a store with the given artists and edges into a temp
// directory and opens it. The store is closed automatically when the test
// finishes.
func BuildStore(t *testing.T, artists []model.Artist, edges []model.Edge) *Fixture {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, persistence.WriteStore(dir, artists, edges))

	store, err := persistence.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ids := make(map[string]model.ArtistID, len(artists))
	for _, a := range artists {
		ids[a.Name] = a.ID
	}

	return &Fixture{
		Dir:     dir,
		Store:   store,
		IDs:     ids,
		Artists: artists,
		Edges:   edges,
	}
}

// SixArtists builds the canonical A..F scenario fixture.
func SixArtists(t *testing.T) *Fixture {
	t.Helper()

	names := []string{"A", "B", "C", "D", "E", "F"}
	artists := make([]model.Artist, 0, len(names))
	for _, n := range names {
		artists = append(artists, model.Artist{
			ID:   NamedID(n),
			Name: n,
			URL:  "https://last.fm/music/" + n,
		})
	}

	edge := func(from, to string, sim float32) model.Edge {
		return model.Edge{From: NamedID(from), To: NamedID(to), Similarity: sim}
	}
	edges := []model.Edge{
		edge("A", "B", 0.9),
		edge("A", "C", 0.4),
		edge("B", "D", 0.8),
		edge("C", "D", 0.5),
		edge("D", "E", 0.9),
		edge("E", "F", 0.1),
		edge("F", "A", 0.2),
	}

	return BuildStore(t, artists, edges)
}

// RandomGraph builds a seeded pseudo-random store with n artists and roughly
// degree outgoing edges per artist. Deterministic for a given seed.
func RandomGraph(t *testing.T, n, degree int, seed int64) *Fixture {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))

	artists := make([]model.Artist, n)
	for i := range artists {
		var id model.ArtistID
		rng.Read(id[:])
		artists[i] = model.Artist{
			ID:   id,
			Name: fmt.Sprintf("artist %04d", i),
			URL:  fmt.Sprintf("https://last.fm/music/artist+%04d", i),
		}
	}

	var edges []model.Edge
	seen := make(map[[2]model.ArtistID]bool)
	for i := range artists {
		for d := 0; d < degree; d++ {
			j := rng.Intn(n)
			if j == i {
				continue
			}
			key := [2]model.ArtistID{artists[i].ID, artists[j].ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, model.Edge{
				From:       artists[i].ID,
				To:         artists[j].ID,
				Similarity: rng.Float32(),
			})
		}
	}

	return BuildStore(t, artists, edges)
}
