// Package cache stores raw NEIS page bodies so repeated queries skip the
// network.
//
// Two backends implement Store:
//
//   - Manager keeps entries in Redis, shared by every process on the same database.
//     Each page is a hash of the raw body and its cache time, expired by Redis TTL.
//   - MemoryStore is a process-local LRU bounded by entry count.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Service:   "mealServiceDietInfo",
//		Params:    map[string]string{"SD_SCHUL_CODE": "7010536"},
//		PageIndex: 1,
//		PageSize:  1000,
//	}
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the hub, then:
//		_ = store.Set(ctx, key, cache.NewEntry(body, cache.DefaultTTL))
//	}
//
// A session configured with a Store consults it before every page request
// and fills it after every cacheable response. Only success envelopes and
// no-data envelopes are cached; service errors never are.
//
// # Metrics
//
//   - neis_cache_hits_total{layer} - Cache hits
//   - neis_cache_misses_total - Cache misses
//   - neis_cache_size_bytes{layer} - Cache size
//   - neis_cache_errors_total{operation} - Cache operation errors
package cache
