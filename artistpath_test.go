package artistpath_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	artistpath "github.com/malbiruk/artistpath"
	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/testutil"
)

func openSixArtists(t *testing.T, optFns ...artistpath.Option) (*artistpath.Engine, *testutil.Fixture) {
	t.Helper()

	fx := testutil.SixArtists(t)
	opts := append([]artistpath.Option{artistpath.WithLogger(artistpath.NoopLogger())}, optFns...)
	eng, err := artistpath.Open(context.Background(), fx.Dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, fx
}

func names(path []model.PathStep) []string {
	out := make([]string, len(path))
	for i, s := range path {
		out[i] = s.Artist.Name
	}
	return out
}

func TestFindPathShortestHops(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 10,
	})
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A", "B", "D", "E"}, names(res.Path))
	assert.Len(t, res.Path, 4, "3 hops")
	assert.GreaterOrEqual(t, res.Stats.ArtistsVisited, 4)
	assert.Positive(t, res.Stats.EdgesConsidered)
}

func TestFindPathBestSimilarity(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 10, Algorithm: model.Weighted,
	})
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A", "B", "D", "E"}, names(res.Path))

	product := 1.0
	for _, step := range res.Path[1:] {
		product *= float64(step.Similarity)
	}
	assert.InDelta(t, 0.648, product, 1e-6)
}

func TestFindPathThresholdBlocks(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["F"], artistpath.SearchParams{
		MinSimilarity: 0.5, MaxRelations: 10, Budget: 10,
	})
	require.NoError(t, err)
	require.Equal(t, model.NotFound, res.Outcome)
	assert.Empty(t, res.Path)
}

func TestFindPathSelf(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["A"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 10,
	})
	require.NoError(t, err)
	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A"}, names(res.Path))
}

func TestFindPathUnknownArtist(t *testing.T) {
	eng, fx := openSixArtists(t)

	var unknown model.ArtistID
	unknown[0] = 0xEE
	_, err := eng.FindPath(context.Background(), fx.IDs["A"], unknown, artistpath.SearchParams{
		MaxRelations: 10, Budget: 10,
	})
	require.ErrorIs(t, err, artistpath.ErrUnknownArtist)

	var uae *artistpath.UnknownArtistError
	require.ErrorAs(t, err, &uae)
	assert.Equal(t, unknown, uae.ID)
}

func TestExploreForwardBudget(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.ExploreForward(context.Background(), fx.IDs["A"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 3,
	})
	require.NoError(t, err)

	require.Equal(t, model.Found, res.Outcome)
	got := map[string]bool{}
	for _, n := range res.Subgraph.Nodes {
		got[n.Artist.Name] = true
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, got)
	assert.Equal(t, 3, res.Stats.ArtistsVisited)
}

func TestExploreContainment(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.ExploreForward(context.Background(), fx.IDs["A"], artistpath.SearchParams{
		MinSimilarity: 0.3, MaxRelations: 10, Budget: 10,
	})
	require.NoError(t, err)

	inSet := map[model.ArtistID]bool{}
	for _, n := range res.Subgraph.Nodes {
		inSet[n.Artist.ID] = true
	}
	for _, e := range res.Subgraph.Edges {
		assert.True(t, inSet[e.From])
		assert.True(t, inSet[e.To])
		assert.GreaterOrEqual(t, e.Similarity, float32(0.3))
	}
}

func TestExploreReverse(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.ExploreReverse(context.Background(), fx.IDs["D"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 3,
	})
	require.NoError(t, err)

	require.Equal(t, "D", res.Center.Name)
	got := map[string]bool{}
	for _, n := range res.Subgraph.Nodes {
		got[n.Artist.Name] = true
	}
	assert.Equal(t, map[string]bool{"D": true, "B": true, "C": true}, got)

	// Natural orientation: predecessors point at D.
	for _, e := range res.Subgraph.Edges {
		if e.To == fx.IDs["D"] {
			assert.Contains(t, []model.ArtistID{fx.IDs["B"], fx.IDs["C"]}, e.From)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	eng, fx := openSixArtists(t)
	ctx := context.Background()

	cases := []artistpath.SearchParams{
		{MinSimilarity: -0.1, MaxRelations: 10, Budget: 10},
		{MinSimilarity: 1.5, MaxRelations: 10, Budget: 10},
		{MaxRelations: -1, Budget: 10},
		{MaxRelations: 251, Budget: 10},
		{MaxRelations: 10, Budget: -5},
	}
	for _, params := range cases {
		_, err := eng.FindPath(ctx, fx.IDs["A"], fx.IDs["E"], params)
		require.ErrorIs(t, err, artistpath.ErrInvalidArgument, "params %+v", params)
	}
}

func TestDefaultsApplied(t *testing.T) {
	eng, fx := openSixArtists(t,
		artistpath.WithDefaultMaxRelations(5),
		artistpath.WithDefaultBudget(50),
	)

	// Zero-valued params pick up the configured defaults and pass
	// validation.
	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, model.Found, res.Outcome)
}

func TestFindPathBudgetExceededIsStructured(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 2,
	})
	require.NoError(t, err, "budget exhaustion is a structured outcome, not an error")
	require.Equal(t, model.BudgetExceeded, res.Outcome)
	assert.Empty(t, res.Path)
	assert.Equal(t, 2, res.Stats.ArtistsVisited, "partial visited count so callers can advise widening")
}

func TestFindPathExpandedNeighborhood(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPathExpanded(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 6,
	})
	require.NoError(t, err)
	require.Equal(t, model.Found, res.Outcome)
	assert.Equal(t, []string{"A", "B", "D", "E"}, names(res.Path))
	assert.Greater(t, len(res.Subgraph.Nodes), len(res.Path), "neighborhood grows beyond the path")
}

func TestFindPathExpandedPathTooLong(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.FindPathExpanded(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 3,
	})
	require.NoError(t, err)
	require.Equal(t, model.PathTooLong, res.Outcome)
	assert.Equal(t, 4, res.MinimumBudget)
}

func TestResolveName(t *testing.T) {
	eng, _ := openSixArtists(t)

	artists, err := eng.ResolveName(context.Background(), "a", 10)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "A", artists[0].Name)
	assert.Equal(t, "https://last.fm/music/A", artists[0].URL)

	_, err = eng.ResolveName(context.Background(), "zzz", 10)
	require.ErrorIs(t, err, artistpath.ErrUnknownArtist)
}

func TestResolveExactSharedNames(t *testing.T) {
	artists := []model.Artist{
		{ID: testutil.NamedID("A"), Name: "Same Name", URL: "u1"},
		{ID: testutil.NamedID("B"), Name: "same  name", URL: "u2"},
		{ID: testutil.NamedID("C"), Name: "Other", URL: "u3"},
	}
	fx := testutil.BuildStore(t, artists, nil)

	eng, err := artistpath.Open(context.Background(), fx.Dir, artistpath.WithLogger(artistpath.NoopLogger()))
	require.NoError(t, err)
	defer eng.Close()

	got, err := eng.ResolveExact(context.Background(), "SAME NAME")
	require.NoError(t, err)
	require.Len(t, got, 2, "all artists sharing the normalized name are retrievable")
}

func TestRandomArtist(t *testing.T) {
	eng, _ := openSixArtists(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		a, err := eng.RandomArtist(context.Background())
		require.NoError(t, err)
		seen[a.Name] = true
	}
	assert.GreaterOrEqual(t, len(seen), 3, "uniform selection covers the catalog")
}

func TestStats(t *testing.T) {
	eng, _ := openSixArtists(t)

	stats := eng.Stats()
	assert.Equal(t, 6, stats.TotalArtists)
	assert.Positive(t, stats.MetadataBytes)
	assert.Positive(t, stats.ForwardBytes)
	assert.Positive(t, stats.ReverseBytes)
	assert.Equal(t, int64(0), stats.InFlightSearches)
}

func TestRequestDeadline(t *testing.T) {
	eng, fx := openSixArtists(t, artistpath.WithRequestDeadline(time.Nanosecond))

	res, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 10,
	})
	require.NoError(t, err)
	require.Equal(t, model.Cancelled, res.Outcome)
}

func TestClosedEngine(t *testing.T) {
	eng, fx := openSixArtists(t)
	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close(), "close is idempotent")

	_, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 10,
	})
	require.ErrorIs(t, err, artistpath.ErrClosed)

	_, err = eng.RandomArtist(context.Background())
	require.ErrorIs(t, err, artistpath.ErrClosed)
}

func TestConcurrentQueries(t *testing.T) {
	eng, fx := openSixArtists(t, artistpath.WithSearchWorkers(4))

	errCh := make(chan error, 32)
	for i := 0; i < 32; i++ {
		go func(weighted bool) {
			params := artistpath.SearchParams{MaxRelations: 10, Budget: 10}
			if weighted {
				params.Algorithm = model.Weighted
			}
			_, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], params)
			errCh <- err
		}(i%2 == 0)
	}
	for i := 0; i < 32; i++ {
		require.NoError(t, <-errCh)
	}
}

func TestEngineExportRoundTrip(t *testing.T) {
	eng, fx := openSixArtists(t)

	res, err := eng.ExploreForward(context.Background(), fx.IDs["A"], artistpath.SearchParams{
		MaxRelations: 10, Budget: 5,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, eng.ExportSubgraph(&buf, res.Subgraph))

	got, err := artistpath.ImportSubgraph(&buf)
	require.NoError(t, err)
	assert.Equal(t, res.Subgraph, got)
}

func TestDeterministicResults(t *testing.T) {
	eng, fx := openSixArtists(t)

	params := artistpath.SearchParams{MaxRelations: 10, Budget: 10}
	first, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], params)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := eng.FindPath(context.Background(), fx.IDs["A"], fx.IDs["E"], params)
		require.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Stats.ArtistsVisited, again.Stats.ArtistsVisited)
		assert.Equal(t, first.Stats.EdgesConsidered, again.Stats.EdgesConsidered)
	}
}
