package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-process storage with LRU eviction.
type MemoryStore struct {
	data       map[string]*envelope
	access     map[string]time.Time
	mutex      sync.RWMutex
	maxEntries int
	freshFor   time.Duration
}

// NewMemoryStore creates an in-memory store. There is no background cleanup
// timer: expired entries are collected by Sweep, which Put invokes once the
// store exceeds its size bound.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &MemoryConfig{
		MaxEntries: 1000,
		FreshFor:   5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryStore{
		data:       make(map[string]*envelope),
		access:     make(map[string]time.Time),
		maxEntries: cfg.MaxEntries,
		freshFor:   cfg.FreshFor,
	}
}

func (ms *MemoryStore) Get(_ context.Context, key string, dest interface{}) (Lookup, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	e, ok := ms.data[key]
	if !ok {
		return Lookup{State: StateMiss}, nil
	}

	st := e.state(ms.freshFor)
	if st == StateMiss {
		// Past the eviction window; the entry lingers until Sweep removes it.
		return Lookup{State: StateMiss}, nil
	}

	ms.access[key] = time.Now()
	if err := e.decode(dest); err != nil {
		return Lookup{State: StateMiss}, err
	}
	return Lookup{State: st, WroteAt: e.WroteAt}, nil
}

func (ms *MemoryStore) Put(ctx context.Context, key string, value interface{}) error {
	e, err := newEnvelope(value)
	if err != nil {
		return err
	}
	ms.putEnv(key, e)

	if ms.Len(ctx) > ms.maxEntries {
		ms.Sweep(ctx)
		ms.capSize()
	}
	return nil
}

// Sweep removes entries past the eviction window and returns how many went.
func (ms *MemoryStore) Sweep(_ context.Context) int {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	removed := 0
	for key, e := range ms.data {
		if e.state(ms.freshFor) == StateMiss {
			delete(ms.data, key)
			delete(ms.access, key)
			removed++
		}
	}
	return removed
}

func (ms *MemoryStore) Len(_ context.Context) int {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return len(ms.data)
}

func (ms *MemoryStore) Close() error { return nil }

func (ms *MemoryStore) putEnv(key string, e *envelope) {
	ms.mutex.Lock()
	ms.data[key] = e
	ms.access[key] = time.Now()
	ms.mutex.Unlock()
}

func (ms *MemoryStore) getEnv(key string) *envelope {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.data[key]
}

// capSize evicts least-recently-used entries until the store fits its bound.
func (ms *MemoryStore) capSize() {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	for len(ms.data) > ms.maxEntries {
		var oldestKey string
		oldestTime := time.Now()

		for key, accessTime := range ms.access {
			if accessTime.Before(oldestTime) {
				oldestTime = accessTime
				oldestKey = key
			}
		}

		if oldestKey == "" {
			return
		}
		delete(ms.data, oldestKey)
		delete(ms.access, oldestKey)
	}
}
