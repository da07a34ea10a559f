package artistpath

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/malbiruk/artistpath/model"
	"github.com/malbiruk/artistpath/nameindex"
	"github.com/malbiruk/artistpath/persistence"
	"github.com/malbiruk/artistpath/resource"
	"github.com/malbiruk/artistpath/search"
)

// Engine answers path and neighborhood queries over an immutable artist
// similarity graph. It is safe for concurrent use: the mapped files and the
// name index are shared read-only state, and every query runs start to
// finish on one worker of a fixed CPU-bound pool.
type Engine struct {
	store      *persistence.Store
	names      *nameindex.Index
	pool       *resource.WorkerPool
	controller *resource.Controller

	opts    options
	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

// SearchParams are the per-query knobs. Zero values fall back to the
// engine's configured defaults; MaxRelations and Budget must then land in
// [1,250] and [1,∞) respectively, and MinSimilarity in [0,1].
type SearchParams struct {
	MinSimilarity float32
	MaxRelations  int
	Budget        int
	Algorithm     model.Algorithm
}

// EngineStats describes the loaded store.
type EngineStats struct {
	TotalArtists     int   `json:"total_artists"`
	MetadataBytes    int64 `json:"metadata_bytes"`
	ForwardBytes     int64 `json:"forward_bytes"`
	ReverseBytes     int64 `json:"reverse_bytes"`
	InFlightSearches int64 `json:"in_flight_searches"`
}

// Open maps the store files under dataDir and builds the name index.
// If a blob store is configured, missing files are fetched first.
// The engine holds the mappings until Close.
func Open(ctx context.Context, dataDir string, optFns ...Option) (*Engine, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.blobStore != nil {
		if err := fetchStore(ctx, dataDir, &opts); err != nil {
			return nil, err
		}
	}

	store, err := persistence.Open(dataDir)
	if err != nil {
		return nil, translateError(err)
	}

	indexStart := time.Now()
	names, err := nameindex.Build(store, opts.indexWorkers)
	if err != nil {
		_ = store.Close()
		return nil, translateError(err)
	}
	opts.logger.LogIndexBuilt(ctx, names.Len(), time.Since(indexStart))

	pool := resource.NewWorkerPool(opts.searchWorkers)
	maxConcurrent := opts.maxConcurrentSearches
	if maxConcurrent <= 0 {
		maxConcurrent = int64(pool.Size())
	}
	controller := resource.NewController(resource.Config{
		MaxConcurrentSearches: maxConcurrent,
		QueriesPerSecond:      opts.queriesPerSecond,
	})

	e := &Engine{
		store:      store,
		names:      names,
		pool:       pool,
		controller: controller,
		opts:       opts,
		logger:     opts.logger,
		metrics:    opts.metricsCollector,
	}

	meta, fwd, rev := store.MappedBytes()
	e.logger.LogOpen(ctx, dataDir, store.Count(), meta, fwd, rev)
	return e, nil
}

// Close drains the search pool and releases the mappings. No search holds a
// mapping reference past Close.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.pool.Close()
	return e.store.Close()
}

// Stats returns store-level statistics.
func (e *Engine) Stats() EngineStats {
	if e.closed.Load() {
		return EngineStats{}
	}
	meta, fwd, rev := e.store.MappedBytes()
	return EngineStats{
		TotalArtists:     e.store.Count(),
		MetadataBytes:    meta,
		ForwardBytes:     fwd,
		ReverseBytes:     rev,
		InFlightSearches: e.controller.InFlight(),
	}
}

// FindPath searches for a connection between two artists. The outcome and
// partial statistics are on the result; only unknown artists, invalid
// parameters and store failures surface as errors.
func (e *Engine) FindPath(ctx context.Context, from, to model.ArtistID, params SearchParams) (*model.PathResult, error) {
	start := time.Now()
	result, err := e.findPath(ctx, from, to, params, false)
	e.metrics.RecordFindPath(params.Algorithm, time.Since(start), resultStats(result), err)
	e.logger.LogFindPath(ctx, params.Algorithm, from, to, resultStats(result), err)
	return result, err
}

// FindPathExpanded behaves like FindPath but grows the result subgraph into
// a display neighborhood around the found path, up to the visit budget. If
// the path itself exceeds the budget, the outcome is PathTooLong and
// MinimumBudget reports the smallest budget that would fit it.
func (e *Engine) FindPathExpanded(ctx context.Context, from, to model.ArtistID, params SearchParams) (*model.PathResult, error) {
	start := time.Now()
	result, err := e.findPath(ctx, from, to, params, true)
	e.metrics.RecordFindPath(params.Algorithm, time.Since(start), resultStats(result), err)
	e.logger.LogFindPath(ctx, params.Algorithm, from, to, resultStats(result), err)
	return result, err
}

func (e *Engine) findPath(ctx context.Context, from, to model.ArtistID, params SearchParams, expand bool) (*model.PathResult, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	p, err := e.normalize(params)
	if err != nil {
		return nil, err
	}

	fromRef, ok := e.store.Find(from)
	if !ok {
		return nil, &UnknownArtistError{ID: from}
	}
	toRef, ok := e.store.Find(to)
	if !ok {
		return nil, &UnknownArtistError{ID: to}
	}

	// In expanded mode the budget sizes the displayed neighborhood; the
	// path search itself runs uncapped (the whole catalog is its ceiling)
	// so a too-long path is reported as PathTooLong instead of
	// BudgetExceeded.
	searchParams := p
	if expand {
		searchParams.Budget = e.store.Count()
	}

	var result *model.PathResult
	runErr := e.runSearch(ctx, func(sctx context.Context) error {
		started := time.Now()

		var (
			res search.Result
			err error
		)
		if params.Algorithm == model.Weighted {
			res, err = search.FindPathWeighted(sctx, e.store, uint32(fromRef), uint32(toRef), searchParams)
		} else {
			res, err = search.FindPathBFS(sctx, e.store, uint32(fromRef), uint32(toRef), searchParams)
		}
		if err != nil {
			return err
		}

		result, err = e.assemblePath(res, p, expand)
		if err != nil {
			return err
		}
		result.Stats.DurationMillis = time.Since(started).Milliseconds()
		return nil
	})
	if runErr != nil {
		if cancelled := cancelledResult(ctx, runErr); cancelled != nil {
			return cancelled, nil
		}
		return nil, translateError(runErr)
	}
	return result, nil
}

func (e *Engine) assemblePath(res search.Result, p search.Params, expand bool) (*model.PathResult, error) {
	result := &model.PathResult{
		Outcome: res.Outcome,
		Stats: model.Stats{
			ArtistsVisited:  res.Visited,
			EdgesConsidered: res.Edges,
		},
	}

	if res.Outcome == model.Found {
		steps, err := search.AssemblePath(e.store, res.Path)
		if err != nil {
			return nil, err
		}
		result.Path = steps
	}

	nodes := res.Nodes
	if expand {
		if res.Outcome != model.Found {
			// No path: an uncapped expanded search may have swept a large
			// visited set; there is no neighborhood to display.
			return result, nil
		}
		if len(res.Path) > p.Budget {
			result.Outcome = model.PathTooLong
			result.MinimumBudget = len(res.Path)
			return result, nil
		}
		expanded, err := search.ExpandPathNeighborhood(e.store, res.Path, p)
		if err != nil {
			return nil, err
		}
		nodes = expanded
	}

	sg, err := search.AssembleSubgraph(e.store, nodes, model.Forward, p)
	if err != nil {
		return nil, err
	}
	result.Subgraph = sg
	return result, nil
}

// ExploreForward produces the bounded neighborhood reachable over outgoing
// edges from id.
func (e *Engine) ExploreForward(ctx context.Context, id model.ArtistID, params SearchParams) (*model.ExploreResult, error) {
	return e.explore(ctx, id, model.Forward, params)
}

// ExploreReverse produces the bounded neighborhood of artists that point at
// id, following incoming edges. Edges are still emitted in their natural
// (source, target, similarity) orientation.
func (e *Engine) ExploreReverse(ctx context.Context, id model.ArtistID, params SearchParams) (*model.ExploreResult, error) {
	return e.explore(ctx, id, model.Reverse, params)
}

func (e *Engine) explore(ctx context.Context, id model.ArtistID, dir model.Direction, params SearchParams) (*model.ExploreResult, error) {
	start := time.Now()
	result, err := e.doExplore(ctx, id, dir, params)
	var stats model.Stats
	if result != nil {
		stats = result.Stats
	}
	e.metrics.RecordExplore(dir, time.Since(start), stats, err)
	e.logger.LogExplore(ctx, dir, id, stats, err)
	return result, err
}

func (e *Engine) doExplore(ctx context.Context, id model.ArtistID, dir model.Direction, params SearchParams) (*model.ExploreResult, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	p, err := e.normalize(params)
	if err != nil {
		return nil, err
	}

	refInt, ok := e.store.Find(id)
	if !ok {
		return nil, &UnknownArtistError{ID: id}
	}
	center, err := e.store.Artist(refInt)
	if err != nil {
		return nil, translateError(err)
	}

	var result *model.ExploreResult
	runErr := e.runSearch(ctx, func(sctx context.Context) error {
		started := time.Now()

		var (
			res search.Result
			err error
		)
		if params.Algorithm == model.Weighted {
			res, err = search.ExploreWeighted(sctx, e.store, uint32(refInt), dir, p)
		} else {
			res, err = search.ExploreBFS(sctx, e.store, uint32(refInt), dir, p)
		}
		if err != nil {
			return err
		}

		sg, err := search.AssembleSubgraph(e.store, res.Nodes, dir, p)
		if err != nil {
			return err
		}
		result = &model.ExploreResult{
			Outcome:  res.Outcome,
			Center:   center,
			Subgraph: sg,
			Stats: model.Stats{
				DurationMillis:  time.Since(started).Milliseconds(),
				ArtistsVisited:  res.Visited,
				EdgesConsidered: res.Edges,
			},
		}
		return nil
	})
	if runErr != nil {
		if ctx.Err() != nil {
			return &model.ExploreResult{Outcome: model.Cancelled, Center: center}, nil
		}
		return nil, translateError(runErr)
	}
	return result, nil
}

// ResolveName returns up to limit artists whose name contains the query,
// exact matches first, then prefix matches, then other substrings.
// limit <= 0 uses the default.
func (e *Engine) ResolveName(ctx context.Context, query string, limit int) ([]model.Artist, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	if limit <= 0 {
		limit = DefaultResolveLimit
	}

	refs := e.names.SearchSubstring(query, limit)
	artists := make([]model.Artist, 0, len(refs))
	for _, ref := range refs {
		a, err := e.store.Artist(int(ref))
		if err != nil {
			return nil, translateError(err)
		}
		artists = append(artists, a)
	}

	e.metrics.RecordResolve(time.Since(start), len(artists))
	if len(artists) == 0 {
		return nil, &UnknownArtistError{Query: query}
	}
	return artists, nil
}

// ResolveExact returns every artist whose normalized name equals the
// normalized query.
func (e *Engine) ResolveExact(ctx context.Context, name string) ([]model.Artist, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	refs := e.names.ResolveExact(name)
	artists := make([]model.Artist, 0, len(refs))
	for _, ref := range refs {
		a, err := e.store.Artist(int(ref))
		if err != nil {
			return nil, translateError(err)
		}
		artists = append(artists, a)
	}

	e.metrics.RecordResolve(time.Since(start), len(artists))
	if len(artists) == 0 {
		return nil, &UnknownArtistError{Query: name}
	}
	return artists, nil
}

// RandomArtist returns a uniformly random artist in O(1).
func (e *Engine) RandomArtist(ctx context.Context) (model.Artist, error) {
	if e.closed.Load() {
		return model.Artist{}, ErrClosed
	}
	ref := e.names.Random()
	a, err := e.store.Artist(int(ref))
	if err != nil {
		return model.Artist{}, translateError(err)
	}
	return a, nil
}

// normalize applies defaults and validates parameter ranges before any I/O.
func (e *Engine) normalize(params SearchParams) (search.Params, error) {
	p := search.Params{
		MinSimilarity: params.MinSimilarity,
		MaxRelations:  params.MaxRelations,
		Budget:        params.Budget,
	}
	if p.MaxRelations == 0 {
		p.MaxRelations = e.opts.defaultMaxRelations
	}
	if p.Budget == 0 {
		p.Budget = e.opts.defaultBudget
	}
	if p.MinSimilarity == 0 {
		p.MinSimilarity = e.opts.defaultMinSimilarity
	}

	if math.IsNaN(float64(p.MinSimilarity)) || p.MinSimilarity < 0 || p.MinSimilarity > 1 {
		return search.Params{}, &InvalidArgumentError{
			Param: "min_similarity", Value: p.MinSimilarity, Reason: "must be in [0, 1]",
		}
	}
	if p.MaxRelations < 1 || p.MaxRelations > MaxRelationsLimit {
		return search.Params{}, &InvalidArgumentError{
			Param: "max_relations", Value: p.MaxRelations,
			Reason: fmt.Sprintf("must be in [1, %d]", MaxRelationsLimit),
		}
	}
	if p.Budget < 1 {
		return search.Params{}, &InvalidArgumentError{
			Param: "budget", Value: p.Budget, Reason: "must be positive",
		}
	}
	return p, nil
}

// runSearch admits the query, applies the request deadline and executes the
// task on the search pool, blocking until it finishes.
func (e *Engine) runSearch(ctx context.Context, task func(ctx context.Context) error) error {
	if e.closed.Load() {
		return ErrClosed
	}

	release, err := e.controller.Admit(ctx)
	if err != nil {
		return err
	}
	defer release()

	sctx := ctx
	if e.opts.requestDeadline > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, e.opts.requestDeadline)
		defer cancel()
	}

	done := make(chan error, 1)
	if err := e.pool.Submit(ctx, func() {
		done <- task(sctx)
	}); err != nil {
		return err
	}
	return <-done
}

// cancelledResult converts an admission- or submission-stage context trip
// into the structured Cancelled outcome the caller expects.
func cancelledResult(ctx context.Context, _ error) *model.PathResult {
	if ctx.Err() == nil {
		return nil
	}
	return &model.PathResult{Outcome: model.Cancelled}
}

func resultStats(r *model.PathResult) model.Stats {
	if r == nil {
		return model.Stats{}
	}
	return r.Stats
}
