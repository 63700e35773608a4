package locks

import (
	"context"
	"sync"
	"time"
)

// Cache is the backend locks and throttles run against. Add and Incr must be
// atomic; the mutual exclusion of Limiter.WithLock rests on them.
type Cache interface {
	// Add stores value under key with ttl only if key is absent.
	Add(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error)

	// Incr increments an existing key and returns the new value. A missing key
	// is not created and reports 0.
	Incr(ctx context.Context, key string) (int64, error)

	Delete(ctx context.Context, key string) error
}

var _ Cache = (*MemoryCache)(nil)

type memoryEntry struct {
	value   int64
	expires time.Time
}

// MemoryCache is a process-local Cache. It only serializes callers inside one
// process, so multi-instance deployments should use RedisCache.
type MemoryCache struct {
	entries map[string]memoryEntry
	lock    sync.Mutex
	nowFunc func() time.Time
}

type MemoryCacheOption func(*MemoryCache)

func WithMemoryNowFunc(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.nowFunc = now
	}
}

func NewMemoryCache(options ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Add(_ context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.live(key); ok {
		return false, nil
	}
	c.entries[key] = memoryEntry{value: value, expires: c.nowFunc().Add(ttl)}
	return true, nil
}

func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, ok := c.live(key)
	if !ok {
		return 0, nil
	}
	entry.value++
	c.entries[key] = entry
	return entry.value, nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.entries, key)
	return nil
}

// Cleanup drops expired entries. Expired keys are ignored on access anyway;
// this only bounds memory.
func (c *MemoryCache) Cleanup() {
	c.lock.Lock()
	defer c.lock.Unlock()

	now := c.nowFunc()
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// live must be called with the lock held.
func (c *MemoryCache) live(key string) (memoryEntry, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !c.nowFunc().Before(entry.expires) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
