package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache stores encoded responses. Key resolves a request key to the current
// generation once, Get and Set take that resolved key so a response computed before an
// Invalidate is never stored under the new generation.
type ResponseCache interface {
	Key(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, fullKey string) ([]byte, bool)
	Set(ctx context.Context, fullKey string, data []byte, expiration time.Duration) error
	Invalidate(ctx context.Context) error
}

// RedisCache namespaces keys with a generation counter, bumping it invalidates all entries.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *RedisCache) Key(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key), nil
}

func (c *RedisCache) Get(ctx context.Context, fullKey string) ([]byte, bool) {
	data, err := c.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set is a no-op once the key's generation is stale.
func (c *RedisCache) Set(ctx context.Context, fullKey string, data []byte, expiration time.Duration) error {
	current, err := c.Key(ctx, "")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(fullKey, current) {
		return nil
	}
	return c.client.Set(ctx, fullKey, data, expiration).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}

type LocalEntry struct {
	Expires time.Time
	Data    []byte
}

const (
	defaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

// MemoryCache is the in process fallback when redis is not configured. Expired entries are
// swept on Set at most once per minute and the map never holds more than MaxEntries.
type MemoryCache struct {
	mu         sync.RWMutex
	memCache   map[string]LocalEntry
	generation int64
	nextSweep  time.Time
	MaxEntries int
	now        func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		memCache:   make(map[string]LocalEntry),
		MaxEntries: defaultMaxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Key(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefix() + key, nil
}

func (c *MemoryCache) prefix() string {
	return fmt.Sprintf("%d:", c.generation)
}

func (c *MemoryCache) Get(_ context.Context, fullKey string) ([]byte, bool) {
	c.mu.RLock()
	local, found := c.memCache[fullKey]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if local.Expires.Before(c.now()) {
		c.mu.Lock()
		delete(c.memCache, fullKey)
		c.mu.Unlock()
		return nil, false
	}
	return local.Data, true
}

func (c *MemoryCache) Set(_ context.Context, fullKey string, data []byte, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.HasPrefix(fullKey, c.prefix()) {
		return nil
	}
	now := c.now()
	if !now.Before(c.nextSweep) {
		c.sweep(now)
	}
	if _, exists := c.memCache[fullKey]; !exists && c.MaxEntries > 0 && len(c.memCache) >= c.MaxEntries {
		c.sweep(now)
		evict(c.memCache, len(c.memCache)-c.MaxEntries+1)
	}
	c.memCache[fullKey] = LocalEntry{Expires: now.Add(expiration), Data: data}
	return nil
}

// sweep drops expired entries, callers hold the write lock.
func (c *MemoryCache) sweep(now time.Time) {
	for key, entry := range c.memCache {
		if entry.Expires.Before(now) {
			delete(c.memCache, key)
		}
	}
	c.nextSweep = now.Add(sweepInterval)
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memCache)
}

func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	clear(c.memCache)
	return nil
}

// evict removes n arbitrary entries.
func evict[V any](m map[string]V, n int) {
	for key := range m {
		if n <= 0 {
			return
		}
		delete(m, key)
		n--
	}
}
