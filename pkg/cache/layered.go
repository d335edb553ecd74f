package cache

import (
	"context"
	"time"
)

// LayeredStore combines a local memory layer with a shared Redis layer.
// Reads hit memory first and fall back to Redis, backfilling the memory
// layer on the way out. Writes go through to both layers.
type LayeredStore struct {
	local  *MemoryStore
	remote *RedisStore
}

// NewLayeredStore creates a layered store on top of memory and Redis.
func NewLayeredStore(opts ...LayeredOption) (*LayeredStore, error) {
	cfg := &LayeredConfig{
		FreshFor:   5 * time.Minute,
		MaxEntries: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	local := NewMemoryStore(
		WithMemoryFreshFor(cfg.FreshFor),
		WithMemoryMaxEntries(cfg.MaxEntries),
	)

	remote, err := NewRedisStore(
		WithRedisAddr(cfg.RedisAddr),
		WithRedisPassword(cfg.RedisPassword),
		WithRedisDB(cfg.RedisDB),
		WithRedisPrefix(cfg.RedisPrefix),
		WithRedisFreshFor(cfg.FreshFor),
	)
	if err != nil {
		return nil, err
	}

	return &LayeredStore{local: local, remote: remote}, nil
}

func (ls *LayeredStore) Get(ctx context.Context, key string, dest interface{}) (Lookup, error) {
	if e := ls.local.getEnv(key); e != nil {
		if st := e.state(ls.local.freshFor); st != StateMiss {
			if err := e.decode(dest); err != nil {
				return Lookup{State: StateMiss}, err
			}
			return Lookup{State: st, WroteAt: e.WroteAt}, nil
		}
	}

	e, err := ls.remote.getEnv(ctx, key)
	if err != nil || e == nil {
		return Lookup{State: StateMiss}, err
	}
	st := e.state(ls.remote.freshFor)
	if st == StateMiss {
		return Lookup{State: StateMiss}, nil
	}
	if err := e.decode(dest); err != nil {
		return Lookup{State: StateMiss}, err
	}

	// Backfill the memory layer with the original write time so the entry
	// does not read as fresher than it is.
	ls.local.putEnv(key, e)

	return Lookup{State: st, WroteAt: e.WroteAt}, nil
}

func (ls *LayeredStore) Put(ctx context.Context, key string, value interface{}) error {
	e, err := newEnvelope(value)
	if err != nil {
		return err
	}
	ls.local.putEnv(key, e)
	return ls.remote.putEnv(ctx, key, e)
}

func (ls *LayeredStore) Sweep(ctx context.Context) int {
	return ls.local.Sweep(ctx) + ls.remote.Sweep(ctx)
}

func (ls *LayeredStore) Len(ctx context.Context) int {
	return ls.remote.Len(ctx)
}

// Close closes both layers.
func (ls *LayeredStore) Close() error {
	if err := ls.local.Close(); err != nil {
		return err
	}
	return ls.remote.Close()
}
