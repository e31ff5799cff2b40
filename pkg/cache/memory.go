package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// DefaultMaxEntries bounds the in-memory store.
const DefaultMaxEntries = 64

// MemoryStore is a process-local LRU Store with per-entry expiry.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	evictList  *list.List
	items      map[string]*list.Element
}

type memoryItem struct {
	key   string
	entry *CacheEntry
}

// NewMemoryStore creates an LRU store holding at most maxEntries page
// bodies. A non-positive maxEntries uses DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		evictList:  list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get retrieves an entry and marks it most recently used.
func (s *MemoryStore) Get(_ context.Context, key CacheKey) (*CacheEntry, error) {
	k := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.items[k]
	if !ok {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	item := node.Value.(*memoryItem)
	if item.entry.IsExpired() {
		s.removeElement(node)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	s.evictList.MoveToFront(node)
	CacheHits.WithLabelValues("memory").Inc()

	return item.entry, nil
}

// Set stores entry, evicting the least recently used one when full.
func (s *MemoryStore) Set(_ context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if entry.TTL() <= 0 {
		return nil
	}

	k := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.items[k]; ok {
		item := node.Value.(*memoryItem)
		CacheSize.WithLabelValues("memory").Sub(float64(len(item.entry.Data)))
		item.entry = entry
		CacheSize.WithLabelValues("memory").Add(float64(len(entry.Data)))
		s.evictList.MoveToFront(node)
		return nil
	}

	s.items[k] = s.evictList.PushFront(&memoryItem{key: k, entry: entry})
	CacheSize.WithLabelValues("memory").Add(float64(len(entry.Data)))

	for s.evictList.Len() > s.maxEntries {
		s.removeElement(s.evictList.Back())
	}

	return nil
}

// Delete removes an entry if present.
func (s *MemoryStore) Delete(_ context.Context, key CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node, ok := s.items[key.String()]; ok {
		s.removeElement(node)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictList.Len()
}

// removeElement must be called with s.mu held.
func (s *MemoryStore) removeElement(node *list.Element) {
	item := node.Value.(*memoryItem)
	s.evictList.Remove(node)
	delete(s.items, item.key)
	CacheSize.WithLabelValues("memory").Sub(float64(len(item.entry.Data)))
}
