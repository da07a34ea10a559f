package artistpath

import (
	"sync/atomic"
	"time"

	"github.com/malbiruk/artistpath/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordFindPath is called after each point-to-point search.
	RecordFindPath(algorithm model.Algorithm, duration time.Duration, stats model.Stats, err error)

	// RecordExplore is called after each bounded exploration.
	RecordExplore(direction model.Direction, duration time.Duration, stats model.Stats, err error)

	// RecordResolve is called after each name resolution, with the number
	// of results returned.
	RecordResolve(duration time.Duration, results int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFindPath(model.Algorithm, time.Duration, model.Stats, error) {}
func (NoopMetricsCollector) RecordExplore(model.Direction, time.Duration, model.Stats, error) {}
func (NoopMetricsCollector) RecordResolve(time.Duration, int)                                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FindPathCount      atomic.Int64
	FindPathErrors     atomic.Int64
	FindPathTotalNanos atomic.Int64
	ExploreCount       atomic.Int64
	ExploreErrors      atomic.Int64
	ExploreTotalNanos  atomic.Int64
	ResolveCount       atomic.Int64
	ArtistsVisited     atomic.Int64
	EdgesConsidered    atomic.Int64
}

// RecordFindPath implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFindPath(_ model.Algorithm, duration time.Duration, stats model.Stats, err error) {
	b.FindPathCount.Add(1)
	b.FindPathTotalNanos.Add(duration.Nanoseconds())
	b.ArtistsVisited.Add(int64(stats.ArtistsVisited))
	b.EdgesConsidered.Add(int64(stats.EdgesConsidered))
	if err != nil {
		b.FindPathErrors.Add(1)
	}
}

// RecordExplore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExplore(_ model.Direction, duration time.Duration, stats model.Stats, err error) {
	b.ExploreCount.Add(1)
	b.ExploreTotalNanos.Add(duration.Nanoseconds())
	b.ArtistsVisited.Add(int64(stats.ArtistsVisited))
	b.EdgesConsidered.Add(int64(stats.EdgesConsidered))
	if err != nil {
		b.ExploreErrors.Add(1)
	}
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(time.Duration, int) {
	b.ResolveCount.Add(1)
}
