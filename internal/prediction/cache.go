// internal/prediction/cache.go
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GlobalKey is the cache key used when no scholarship id is given.
const GlobalKey = "global"

// WeightCache stores resolved weights per scholarship id. An entry is valid only
// while now < expiry; expired entries are reported as misses.
type WeightCache interface {
	Get(ctx context.Context, key string) (ResolvedWeights, bool, error)
	Set(ctx context.Context, key string, w ResolvedWeights, ttl time.Duration) error
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	weights   ResolvedWeights
	expiresAt time.Time
}

// MemoryWeightCache is a process-local WeightCache.
type MemoryWeightCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryWeightCache creates an empty cache. A nil clock uses time.Now.
func NewMemoryWeightCache(clock func() time.Time) *MemoryWeightCache {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryWeightCache{
		entries: make(map[string]memoryEntry),
		now:     clock,
	}
}

func (c *MemoryWeightCache) Get(_ context.Context, key string) (ResolvedWeights, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return ResolvedWeights{}, false, nil
	}
	return entry.weights, true, nil
}

func (c *MemoryWeightCache) Set(_ context.Context, key string, w ResolvedWeights, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{weights: w, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryWeightCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryWeightCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const defaultRedisPrefix = "model:weights:"

// RedisWeightCache shares resolved weights between worker replicas. Expiry is
// delegated to the Redis key TTL.
type RedisWeightCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisWeightCache(client redis.UniversalClient, prefix string) *RedisWeightCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisWeightCache{client: client, prefix: prefix}
}

func (c *RedisWeightCache) Get(ctx context.Context, key string) (ResolvedWeights, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ResolvedWeights{}, false, nil
	}
	if err != nil {
		return ResolvedWeights{}, false, err
	}

	var w ResolvedWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return ResolvedWeights{}, false, err
	}
	return w, true, nil
}

func (c *RedisWeightCache) Set(ctx context.Context, key string, w ResolvedWeights, ttl time.Duration) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Clear removes every key under the cache prefix. SCAN only walks the node it is
// sent to, so cluster and ring clients are cleared one master/shard at a time.
func (c *RedisWeightCache) Clear(ctx context.Context) error {
	pattern := c.prefix + "*"
	clearShard := func(ctx context.Context, node *redis.Client) error {
		return clearNode(ctx, node, pattern)
	}

	switch client := c.client.(type) {
	case *redis.ClusterClient:
		return client.ForEachMaster(ctx, clearShard)
	case *redis.Ring:
		return client.ForEachShard(ctx, clearShard)
	default:
		return clearNode(ctx, c.client, pattern)
	}
}

// clearNode deletes keys one at a time; a multi-key DEL fails with CROSSSLOT
// when keys on one cluster node hash to different slots.
func clearNode(ctx context.Context, client redis.Cmdable, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			_, err := client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, key := range keys {
					pipe.Del(ctx, key)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
