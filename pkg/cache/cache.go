package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps JSON-encoded values in a map so callers observe the same
// copy semantics as with Redis.
type MemoryStore struct {
	store map[string]memoryEntry
	mu    sync.RWMutex
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (c *MemoryStore) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("marshal", err, false)
	}
	entry := memoryEntry{data: data}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = entry
	return nil
}

func (c *MemoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, NewCacheError("unmarshal", err, false)
	}
	return true, nil
}

func (c *MemoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *MemoryStore) Ping(context.Context) error { return nil }

func (c *MemoryStore) Close() error { return nil }

// Len counts stored entries, including ones that have expired but not been read since.
func (c *MemoryStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
