package artistpath

import (
	"time"

	"github.com/malbiruk/artistpath/blobstore"
	"github.com/malbiruk/artistpath/codec"
)

// Defaults applied when the caller omits a parameter, matching the values
// the front-ends historically used.
const (
	DefaultMinSimilarity = float32(0)
	DefaultMaxRelations  = 80
	DefaultBudget        = 100
	DefaultResolveLimit  = 10

	// MaxRelationsLimit is the hard upper bound of the fan-out cap.
	MaxRelationsLimit = 250
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	codec            codec.Codec
	blobStore        blobstore.BlobStore

	defaultMinSimilarity float32
	defaultMaxRelations  int
	defaultBudget        int

	searchWorkers         int
	maxConcurrentSearches int64
	queriesPerSecond      float64
	requestDeadline       time.Duration
	indexWorkers          int
}

func defaultOptions() options {
	return options{
		logger:               NewLogger(nil),
		metricsCollector:     NoopMetricsCollector{},
		codec:                codec.Default,
		defaultMinSimilarity: DefaultMinSimilarity,
		defaultMaxRelations:  DefaultMaxRelations,
		defaultBudget:        DefaultBudget,
	}
}

// Option configures engine construction. Configuration is an explicit value
// threaded into Open; there are no ambient globals.
type Option func(*options)

// WithLogger sets the structured logger. nil restores the default text
// logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NewLogger(nil)
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink. nil disables collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCodec configures the codec used for subgraph export.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithBlobStore sets a remote source for the store files. Missing files are
// fetched into the data directory before the engine maps them.
func WithBlobStore(bs blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = bs
	}
}

// WithDefaultMinSimilarity sets the similarity floor applied when a query
// omits one.
func WithDefaultMinSimilarity(s float32) Option {
	return func(o *options) {
		o.defaultMinSimilarity = s
	}
}

// WithDefaultMaxRelations sets the fan-out cap applied when a query omits
// one.
func WithDefaultMaxRelations(n int) Option {
	return func(o *options) {
		o.defaultMaxRelations = n
	}
}

// WithDefaultBudget sets the visit budget applied when a query omits one.
func WithDefaultBudget(n int) Option {
	return func(o *options) {
		o.defaultBudget = n
	}
}

// WithSearchWorkers sets the size of the CPU-bound pool that executes
// searches. <= 0 means GOMAXPROCS. Trivial operations (name resolution,
// random selection, stats) never wait behind searches.
func WithSearchWorkers(n int) Option {
	return func(o *options) {
		o.searchWorkers = n
	}
}

// WithMaxConcurrentSearches bounds admitted searches. <= 0 defaults to the
// worker count.
func WithMaxConcurrentSearches(n int64) Option {
	return func(o *options) {
		o.maxConcurrentSearches = n
	}
}

// WithQueryRateLimit caps sustained queries per second. 0 means unlimited.
func WithQueryRateLimit(qps float64) Option {
	return func(o *options) {
		o.queriesPerSecond = qps
	}
}

// WithRequestDeadline sets the wall-clock cap per search. 0 disables it;
// the visit budget remains the primary defense against runaway queries.
func WithRequestDeadline(d time.Duration) Option {
	return func(o *options) {
		o.requestDeadline = d
	}
}

// WithIndexWorkers sets the parallelism of the startup name-index build.
// <= 0 means GOMAXPROCS.
func WithIndexWorkers(n int) Option {
	return func(o *options) {
		o.indexWorkers = n
	}
}
