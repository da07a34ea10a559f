package persistence_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/persistence"
	"github.com/malbiruk/artistpath/testutil"
)

func TestOpenAndLookup(t *testing.T) {
	fx := testutil.SixArtists(t)

	require.Equal(t, 6, fx.Store.Count())

	rec, err := fx.Store.Lookup(fx.IDs["B"])
	require.NoError(t, err)
	assert.Equal(t, "B", rec.Name)
	assert.Equal(t, "https://last.fm/music/B", rec.URL)
	assert.Equal(t, fx.IDs["B"], rec.ID)

	var unknown model.ArtistID
	unknown[0] = 0xFF
	_, err = fx.Store.Lookup(unknown)
	require.ErrorIs(t, err, persistence.ErrUnknownArtist)
}

func TestFindIsOrderedBinarySearch(t *testing.T) {
	fx := testutil.SixArtists(t)

	// Table is sorted by id; every artist must be found at a consistent index.
	for _, a := range fx.Artists {
		i, ok := fx.Store.Find(a.ID)
		require.True(t, ok, "artist %s", a.Name)
		assert.Equal(t, a.ID, fx.Store.ID(i))
	}
}

func TestNeighborsDescendingOrder(t *testing.T) {
	fx := testutil.SixArtists(t)

	i, ok := fx.Store.Find(fx.IDs["A"])
	require.True(t, ok)

	it, err := fx.Store.Neighbors(i, model.Forward, 0, -1)
	require.NoError(t, err)

	var sims []float32
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		sims = append(sims, n.Similarity)
	}
	require.Equal(t, []float32{0.9, 0.4}, sims)
}

func TestNeighborsThresholdStopsScan(t *testing.T) {
	fx := testutil.SixArtists(t)

	i, _ := fx.Store.Find(fx.IDs["A"])
	it, err := fx.Store.Neighbors(i, model.Forward, 0.5, -1)
	require.NoError(t, err)

	n, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, fx.IDs["B"], n.ID)
	assert.InDelta(t, 0.9, n.Similarity, 1e-6)

	// 0.4 is below the floor: the iterator stops for good.
	_, ok = it.Next()
	require.False(t, ok)
	_, ok = it.Next()
	require.False(t, ok)
}

func TestNeighborsMaxCount(t *testing.T) {
	fx := testutil.SixArtists(t)

	i, _ := fx.Store.Find(fx.IDs["A"])
	it, err := fx.Store.Neighbors(i, model.Forward, 0, 1)
	require.NoError(t, err)

	n, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, fx.IDs["B"], n.ID)

	_, ok = it.Next()
	require.False(t, ok)
}

func TestNeighborsReverseDirection(t *testing.T) {
	fx := testutil.SixArtists(t)

	i, _ := fx.Store.Find(fx.IDs["D"])
	it, err := fx.Store.Neighbors(i, model.Reverse, 0, -1)
	require.NoError(t, err)

	got := map[model.ArtistID]float32{}
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		got[n.ID] = n.Similarity
	}
	require.Len(t, got, 2)
	assert.InDelta(t, 0.8, got[fx.IDs["B"]], 1e-6)
	assert.InDelta(t, 0.5, got[fx.IDs["C"]], 1e-6)
}

// Offset round-trip: each record's offsets open a block whose
// count+count*20 bytes fit in the file, and every neighbor in it has a
// metadata record.
func TestOffsetRoundTrip(t *testing.T) {
	fx := testutil.RandomGraph(t, 200, 8, 42)

	for i := 0; i < fx.Store.Count(); i++ {
		for _, dir := range []model.Direction{model.Forward, model.Reverse} {
			it, err := fx.Store.Neighbors(i, dir, 0, -1)
			require.NoError(t, err, "record %d %s", i, dir)
			for {
				n, ok := it.Next()
				if !ok {
					break
				}
				_, found := fx.Store.Find(n.ID)
				require.True(t, found, "neighbor %s has no metadata record", n.ID)
			}
		}
	}
}

// Graph transposition: (u,v,w) in forward iff (u,v,w) in reverse under v.
func TestGraphTransposition(t *testing.T) {
	fx := testutil.RandomGraph(t, 100, 6, 7)

	type edge struct {
		from, to model.ArtistID
		sim      float32
	}

	collect := func(dir model.Direction) map[edge]bool {
		edges := make(map[edge]bool)
		for i := 0; i < fx.Store.Count(); i++ {
			it, err := fx.Store.Neighbors(i, dir, 0, -1)
			require.NoError(t, err)
			self := fx.Store.ID(i)
			for {
				n, ok := it.Next()
				if !ok {
					break
				}
				if dir == model.Forward {
					edges[edge{self, n.ID, n.Similarity}] = true
				} else {
					edges[edge{n.ID, self, n.Similarity}] = true
				}
			}
		}
		return edges
	}

	require.Equal(t, collect(model.Forward), collect(model.Reverse))
}

// Sort order: every adjacency block is similarity-descending.
func TestAdjacencySortOrder(t *testing.T) {
	fx := testutil.RandomGraph(t, 150, 10, 99)

	for i := 0; i < fx.Store.Count(); i++ {
		for _, dir := range []model.Direction{model.Forward, model.Reverse} {
			it, err := fx.Store.Neighbors(i, dir, 0, -1)
			require.NoError(t, err)
			prev := float32(1.1)
			for {
				n, ok := it.Next()
				if !ok {
					break
				}
				require.LessOrEqual(t, n.Similarity, prev)
				prev = n.Similarity
			}
		}
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	fx := testutil.SixArtists(t)

	raw, err := os.ReadFile(filepath.Join(fx.Dir, persistence.MetadataFile))
	require.NoError(t, err)

	dir := t.TempDir()
	binary.LittleEndian.PutUint32(raw[0:4], 0xDEADBEEF)
	require.NoError(t, os.WriteFile(filepath.Join(dir, persistence.MetadataFile), raw, 0o644))
	copyFile(t, filepath.Join(fx.Dir, persistence.ForwardGraphFile), filepath.Join(dir, persistence.ForwardGraphFile))
	copyFile(t, filepath.Join(fx.Dir, persistence.ReverseGraphFile), filepath.Join(dir, persistence.ReverseGraphFile))

	_, err = persistence.Open(dir)
	require.ErrorIs(t, err, persistence.ErrInvalidMagic)
}

func TestOpenRejectsBadVersion(t *testing.T) {
	fx := testutil.SixArtists(t)

	raw, err := os.ReadFile(filepath.Join(fx.Dir, persistence.MetadataFile))
	require.NoError(t, err)

	dir := t.TempDir()
	binary.LittleEndian.PutUint32(raw[4:8], 0x7FFFFFFF)
	require.NoError(t, os.WriteFile(filepath.Join(dir, persistence.MetadataFile), raw, 0o644))
	copyFile(t, filepath.Join(fx.Dir, persistence.ForwardGraphFile), filepath.Join(dir, persistence.ForwardGraphFile))
	copyFile(t, filepath.Join(fx.Dir, persistence.ReverseGraphFile), filepath.Join(dir, persistence.ReverseGraphFile))

	_, err = persistence.Open(dir)
	require.ErrorIs(t, err, persistence.ErrInvalidVersion)
}

func TestOpenRejectsTruncatedTable(t *testing.T) {
	fx := testutil.SixArtists(t)

	raw, err := os.ReadFile(filepath.Join(fx.Dir, persistence.MetadataFile))
	require.NoError(t, err)

	dir := t.TempDir()
	truncated := raw[:persistence.HeaderSize+persistence.RecordSize] // claims 6 records, holds 1
	require.NoError(t, os.WriteFile(filepath.Join(dir, persistence.MetadataFile), truncated, 0o644))
	copyFile(t, filepath.Join(fx.Dir, persistence.ForwardGraphFile), filepath.Join(dir, persistence.ForwardGraphFile))
	copyFile(t, filepath.Join(fx.Dir, persistence.ReverseGraphFile), filepath.Join(dir, persistence.ReverseGraphFile))

	_, err = persistence.Open(dir)
	require.ErrorIs(t, err, persistence.ErrCorrupt)
}

func TestNeighborsDetectsTruncatedGraph(t *testing.T) {
	fx := testutil.SixArtists(t)

	// Rebuild the store with a truncated forward graph: A's block claims
	// two entries but the file ends after one.
	raw, err := os.ReadFile(filepath.Join(fx.Dir, persistence.ForwardGraphFile))
	require.NoError(t, err)

	dir := t.TempDir()
	copyFile(t, filepath.Join(fx.Dir, persistence.MetadataFile), filepath.Join(dir, persistence.MetadataFile))
	copyFile(t, filepath.Join(fx.Dir, persistence.ReverseGraphFile), filepath.Join(dir, persistence.ReverseGraphFile))
	require.NoError(t, os.WriteFile(filepath.Join(dir, persistence.ForwardGraphFile), raw[:4+persistence.NeighborSize], 0o644))

	store, err := persistence.Open(dir)
	require.NoError(t, err)
	defer store.Close()

	i, ok := store.Find(testutil.NamedID("A"))
	require.True(t, ok)
	_, err = store.Neighbors(i, model.Forward, 0, -1)
	require.ErrorIs(t, err, persistence.ErrCorrupt)

	var corrupt *persistence.CorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, persistence.ForwardGraphFile, corrupt.File)
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
