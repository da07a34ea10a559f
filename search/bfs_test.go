package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/search"
	"github.com/malbiruk/artistpath/testutil"
)

func ref(t *testing.T, fx *testutil.Fixture, name string) uint32 {
	t.Helper()
	i, ok := fx.Store.Find(fx.IDs[name])
	require.True(t, ok, "artist %s", name)
	return uint32(i)
}

func pathNames(t *testing.T, fx *testutil.Fixture, path []search.Step) []string {
	t.Helper()
	names := make([]string, len(path))
	for i, step := range path {
		rec, err := fx.Store.Record(int(step.Ref))
		require.NoError(t, err)
		names[i] = rec.Name
	}
	return names
}

func defaultParams() search.Params {
	return search.Params{MinSimilarity: 0, MaxRelations: 10, Budget: 10}
}

func TestBFSShortestPath(t *testing.T) {
	fx := testutil.SixArtists(t)

	res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), defaultParams())
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A", "B", "D", "E"}, pathNames(t, fx, res.Path))
	assert.Len(t, res.Path, 4, "3 hops")
	assert.GreaterOrEqual(t, res.Visited, 4)
	assert.LessOrEqual(t, res.Visited, 10)
}

func TestBFSThresholdBlocksPath(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	p.MinSimilarity = 0.5
	res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "F"), p)
	require.NoError(t, err)

	require.Equal(t, model.NotFound, res.Outcome)
	assert.Empty(t, res.Path)
}

func TestBFSSelfPath(t *testing.T) {
	fx := testutil.SixArtists(t)

	res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "A"), defaultParams())
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A"}, pathNames(t, fx, res.Path))
	assert.Equal(t, 1, res.Visited)
}

func TestBFSBudgetExceeded(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	p.Budget = 2 // room for the two endpoints only
	res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), p)
	require.NoError(t, err)

	require.Equal(t, model.BudgetExceeded, res.Outcome)
	assert.Empty(t, res.Path)
	assert.Equal(t, 2, res.Visited)
}

func TestBFSBudgetMonotonicity(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	p.Budget = 5
	found, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), p)
	require.NoError(t, err)
	require.Equal(t, model.Found, found.Outcome)

	for budget := 6; budget <= 12; budget++ {
		p.Budget = budget
		res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), p)
		require.NoError(t, err)
		require.Equal(t, model.Found, res.Outcome)
		assert.Equal(t, found.Path, res.Path, "budget %d changed the path", budget)
	}
}

func TestBFSThresholdMonotonicity(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	p.MinSimilarity = 0.5
	found, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), p)
	require.NoError(t, err)
	require.Equal(t, model.Found, found.Outcome)

	for _, floor := range []float32{0.4, 0.2, 0} {
		p.MinSimilarity = floor
		res, err := search.FindPathBFS(context.Background(), fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), p)
		require.NoError(t, err)
		require.Equal(t, model.Found, res.Outcome)
		assert.Equal(t, found.Path, res.Path, "floor %v changed the path", floor)
	}
}

func TestBFSDeterminism(t *testing.T) {
	fx := testutil.RandomGraph(t, 300, 6, 11)

	src, dst := uint32(0), uint32(250)
	p := search.Params{MinSimilarity: 0.1, MaxRelations: 5, Budget: 200}

	first, err := search.FindPathBFS(context.Background(), fx.Store, src, dst, p)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := search.FindPathBFS(context.Background(), fx.Store, src, dst, p)
		require.NoError(t, err)
		assert.Equal(t, first, again, "run %d diverged", i)
	}
}

func TestBFSCancellation(t *testing.T) {
	fx := testutil.SixArtists(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := search.FindPathBFS(ctx, fx.Store, ref(t, fx, "A"), ref(t, fx, "E"), defaultParams())
	require.NoError(t, err)
	require.Equal(t, model.Cancelled, res.Outcome)
	assert.Equal(t, 2, res.Visited, "partial visited count is reported")
}

func TestExploreBFSBudgetStopsAfterFirstLayer(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	p.Budget = 3
	res, err := search.ExploreBFS(context.Background(), fx.Store, ref(t, fx, "A"), model.Forward, p)
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	got := map[string]int{}
	for _, n := range res.Nodes {
		rec, err := fx.Store.Record(int(n.Ref))
		require.NoError(t, err)
		got[rec.Name] = n.Layer
	}
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 1}, got)
	assert.Equal(t, 3, res.Visited)
}

func TestExploreBFSReverseFollowsIncomingEdges(t *testing.T) {
	fx := testutil.SixArtists(t)

	res, err := search.ExploreBFS(context.Background(), fx.Store, ref(t, fx, "D"), model.Reverse, search.Params{
		MinSimilarity: 0, MaxRelations: 10, Budget: 3,
	})
	require.NoError(t, err)

	got := map[string]bool{}
	for _, n := range res.Nodes {
		rec, err := fx.Store.Record(int(n.Ref))
		require.NoError(t, err)
		got[rec.Name] = true
	}
	assert.Equal(t, map[string]bool{"D": true, "B": true, "C": true}, got)
}

func TestExploreBFSLayers(t *testing.T) {
	fx := testutil.SixArtists(t)

	p := defaultParams()
	res, err := search.ExploreBFS(context.Background(), fx.Store, ref(t, fx, "A"), model.Forward, p)
	require.NoError(t, err)

	layers := map[string]int{}
	for _, n := range res.Nodes {
		rec, err := fx.Store.Record(int(n.Ref))
		require.NoError(t, err)
		layers[rec.Name] = n.Layer
	}
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 1, "D": 2, "E": 3, "F": 4}, layers)
}
