package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds admission limits for search execution.
type Config struct {
	// MaxConcurrentSearches bounds searches in flight at once.
	// If 0, defaults to 1.
	MaxConcurrentSearches int64

	// QueriesPerSecond is the maximum sustained query rate.
	// If 0, unlimited.
	QueriesPerSecond float64
}

// Controller admits searches subject to concurrency and rate limits.
type Controller struct {
	cfg Config

	searchSem *semaphore.Weighted
	limiter   *rate.Limiter // nil if unlimited

	inFlight atomic.Int64
}

// NewController creates a controller from the config.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentSearches <= 0 {
		cfg.MaxConcurrentSearches = 1
	}

	c := &Controller{
		cfg:       cfg,
		searchSem: semaphore.NewWeighted(cfg.MaxConcurrentSearches),
	}
	if cfg.QueriesPerSecond > 0 {
		burst := int(cfg.QueriesPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}
	return c
}

// Admit blocks until the search may proceed or ctx is done. The returned
// release function must be called exactly once when the search finishes.
func (c *Controller) Admit(ctx context.Context) (func(), error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := c.searchSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	c.inFlight.Add(1)
	return func() {
		c.inFlight.Add(-1)
		c.searchSem.Release(1)
	}, nil
}

// InFlight returns the number of searches currently admitted.
func (c *Controller) InFlight() int64 {
	return c.inFlight.Load()
}
