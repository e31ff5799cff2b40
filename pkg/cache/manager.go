package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hash fields of a page entry.
const (
	fieldBody     = "body"
	fieldCachedAt = "cached_at"
)

// Manager is the Redis-backed Store. Entries are shared by every session
// pointed at the same Redis database.
//
// Each page is a hash holding the raw response body and the time it was
// cached. Expiry is the key's Redis TTL, so the body is stored as returned by
// the hub with no re-encoding, and Redis evicts stale pages on its own.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get returns the page stored under key. Expires is rebuilt from the key's
// remaining TTL. Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	redisKey := key.String()

	var fields *redis.MapStringStringCmd
	var ttl *redis.DurationCmd
	_, err := m.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	values := fields.Val()
	remaining := ttl.Val()
	// A missing key yields no fields and a negative TTL.
	if len(values) == 0 || remaining <= 0 {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	body, ok := values[fieldBody]
	if !ok {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %s has no %s field", ErrInvalidEntry, redisKey, fieldBody)
	}
	cachedAt, err := strconv.ParseInt(values[fieldCachedAt], 10, 64)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, fieldCachedAt, err)
	}

	CacheHits.WithLabelValues("redis").Inc()

	return &CacheEntry{
		Data:     []byte(body),
		Expires:  time.Now().Add(remaining),
		CachedAt: time.UnixMilli(cachedAt),
	}, nil
}

// Set stores a page body until entry.Expires. Entries that already expired
// are not written.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	redisKey := key.String()
	_, err := m.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisKey)
		pipe.HSet(ctx, redisKey, fieldBody, entry.Data, fieldCachedAt, cachedAt.UnixMilli())
		pipe.PExpire(ctx, redisKey, ttl)
		return nil
	})
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(entry.Data)))

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
