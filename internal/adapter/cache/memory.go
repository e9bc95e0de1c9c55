package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	payload  []byte
	storedAt time.Time
	ttl      time.Duration
}

// Memory is an in-process TTL cache. Entries expire lazily: an expired
// entry is dropped when a Get touches it, there is no background sweep.
// Size is unbounded; the cache lives for one terminal session.
type Memory struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(e.storedAt) > e.ttl {
		c.mu.Lock()
		// Recheck: a Set may have raced the lock upgrade.
		if cur, ok := c.m[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.payload, true, nil
}

func (c *Memory) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{payload: payload, storedAt: c.now(), ttl: ttl}
	return nil
}

func (c *Memory) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]entry)
	return nil
}
