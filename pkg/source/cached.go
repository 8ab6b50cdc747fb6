package source

import (
	"context"
	"time"

	"workerscope/pkg/cache"
	"workerscope/pkg/logger"
)

// CachedRunner serves repeated commands from an OutputCache.
// Only successful output is cached.
type CachedRunner struct {
	next  Runner
	cache *cache.OutputCache
	ttl   time.Duration
}

// NewCachedRunner wraps next; ttl <= 0 disables caching
func NewCachedRunner(next Runner, c *cache.OutputCache, ttl time.Duration) *CachedRunner {
	return &CachedRunner{next: next, cache: c, ttl: ttl}
}

// Run returns cached output when available, otherwise runs and caches
func (r *CachedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.cache == nil || r.ttl <= 0 {
		return r.next.Run(ctx, name, args...)
	}

	key := cache.Key(append([]string{name}, args...)...)
	if data, ok := r.cache.Get(ctx, key); ok {
		logger.DebugCtx(ctx, "cache hit for %s %v", name, args)
		return data, nil
	}

	data, err := r.next.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, data, r.ttl)
	return data, nil
}

// Invalidate drops the cached output of one command
func (r *CachedRunner) Invalidate(ctx context.Context, name string, args ...string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, cache.Key(append([]string{name}, args...)...))
}
