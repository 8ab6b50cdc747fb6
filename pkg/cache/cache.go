// Package cache keeps raw source tool output for a short time so that repeated
// report requests do not re-run bosh and fly.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// cacheKeyPrefix is the prefix for Redis cache keys
	cacheKeyPrefix = "workerscope:source:"

	redisTimeout    = 2 * time.Second
	cleanupInterval = time.Minute
)

// OutputCache stores command output by argv with a TTL.
// Redis is the primary store when configured; memory is always written
// and serves as the fallback when Redis is unavailable.
//
// Cache key format: workerscope:source:{sha256(argv)}
type OutputCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem

	redisClient *redis.Client

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

// NewOutputCache creates an in-memory cache. Use WithRedis to add Redis.
func NewOutputCache() *OutputCache {
	c := &OutputCache{
		items: make(map[string]*cacheItem),
		stop:  make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// WithRedis configures Redis as the primary store
func (c *OutputCache) WithRedis(client *redis.Client) *OutputCache {
	c.redisClient = client
	return c
}

// Key generates the cache key for a command line
func Key(argv ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(argv, "\x00")))
	return cacheKeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns cached output, trying Redis first
func (c *OutputCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.redisClient != nil {
		if data, ok := c.getFromRedis(ctx, key); ok {
			return data, true
		}
	}
	return c.getFromMemory(key)
}

func (c *OutputCache) getFromRedis(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		// Key not found or Redis error - fall back to memory cache
		return nil, false
	}
	return data, true
}

func (c *OutputCache) getFromMemory(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.data, true
}

// Set stores output for ttl. A non-positive ttl is a no-op.
func (c *OutputCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	if c.redisClient != nil {
		rctx, cancel := context.WithTimeout(ctx, redisTimeout)
		// Ignore errors, memory cache is the fallback
		_ = c.redisClient.Set(rctx, key, data, ttl).Err()
		cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &cacheItem{
		data:      append([]byte(nil), data...),
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a key from both stores
func (c *OutputCache) Delete(ctx context.Context, key string) {
	if c.redisClient != nil {
		rctx, cancel := context.WithTimeout(ctx, redisTimeout)
		_ = c.redisClient.Del(rctx, key).Err()
		cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes every workerscope entry from both stores
func (c *OutputCache) Clear(ctx context.Context) {
	if c.redisClient != nil {
		c.clearRedis(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheItem)
}

func (c *OutputCache) clearRedis(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := c.redisClient.Scan(ctx, cursor, cacheKeyPrefix+"*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			_ = c.redisClient.Del(ctx, keys...).Err()
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Close stops the background cleanup
func (c *OutputCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *OutputCache) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// removeExpired drops expired memory entries; Redis expires via TTL
func (c *OutputCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// Size returns the number of in-memory entries, expired ones included until cleanup
func (c *OutputCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// HasRedis reports whether Redis is configured
func (c *OutputCache) HasRedis() bool {
	return c.redisClient != nil
}
