package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// memoryDefaultTTL bounds entries stored without an explicit TTL so a
// backfilled layered entry cannot outlive its Redis source.
const memoryDefaultTTL = time.Hour

type memoryEntry struct {
	data     []byte
	expireAt time.Time
	lastUsed time.Time
}

// MemoryCache is the in-process Service backend. Values are stored
// JSON-encoded, the same representation Redis uses, so switching
// backends never changes what Get hands back. Eviction is LRU once
// MaxEntries is reached; expired entries are swept by a janitor.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	maxEntries int
	janitor    *time.Ticker
	done       chan struct{}
}

// NewMemoryCache creates an in-process cache and starts its janitor.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxEntries:      1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries:    make(map[string]*memoryEntry),
		maxEntries: cfg.MaxEntries,
		janitor:    time.NewTicker(cfg.CleanupInterval),
		done:       make(chan struct{}),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = memoryDefaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.entries[key]; !exists && len(mc.entries) >= mc.maxEntries {
		mc.evictOldest()
	}
	now := time.Now()
	mc.entries[key] = &memoryEntry{
		data:     data,
		expireAt: now.Add(ttl),
		lastUsed: now,
	}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	mc.mu.Lock()
	entry, ok := mc.entries[key]
	if !ok || time.Now().After(entry.expireAt) {
		if ok {
			delete(mc.entries, key)
		}
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	entry.lastUsed = time.Now()
	data := entry.data
	mc.mu.Unlock()

	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if entry, ok := mc.entries[key]; ok && !time.Now().After(entry.expireAt) {
			return true, nil
		}
	}
	return false, nil
}

// Close stops the janitor. Entries stay readable until the cache is
// garbage collected.
func (mc *MemoryCache) Close() error {
	mc.janitor.Stop()
	close(mc.done)
	return nil
}

// evictOldest drops the least recently used entry. Caller holds mc.mu.
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestUse time.Time
	for key, entry := range mc.entries {
		if oldestKey == "" || entry.lastUsed.Before(oldestUse) {
			oldestKey = key
			oldestUse = entry.lastUsed
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) sweep() {
	for {
		select {
		case <-mc.janitor.C:
			now := time.Now()
			mc.mu.Lock()
			for key, entry := range mc.entries {
				if now.After(entry.expireAt) {
					delete(mc.entries, key)
				}
			}
			mc.mu.Unlock()
		case <-mc.done:
			return
		}
	}
}
