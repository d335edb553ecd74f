package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. The server-side TTL is set to the
// eviction window (twice the freshness window), so expired entries disappear
// without an explicit sweep.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	freshFor time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Addr:     "localhost:6379",
		DB:       0,
		Prefix:   "indexforge",
		FreshFor: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		client:   client,
		prefix:   cfg.Prefix,
		freshFor: cfg.FreshFor,
	}, nil
}

// Client returns the underlying redis client.
func (rs *RedisStore) Client() *redis.Client {
	return rs.client
}

func (rs *RedisStore) Get(ctx context.Context, key string, dest interface{}) (Lookup, error) {
	e, err := rs.getEnv(ctx, key)
	if err != nil {
		return Lookup{State: StateMiss}, err
	}
	if e == nil {
		return Lookup{State: StateMiss}, nil
	}

	st := e.state(rs.freshFor)
	if st == StateMiss {
		return Lookup{State: StateMiss}, nil
	}
	if err := e.decode(dest); err != nil {
		return Lookup{State: StateMiss}, err
	}
	return Lookup{State: st, WroteAt: e.WroteAt}, nil
}

func (rs *RedisStore) Put(ctx context.Context, key string, value interface{}) error {
	e, err := newEnvelope(value)
	if err != nil {
		return err
	}
	return rs.putEnv(ctx, key, e)
}

// Sweep is a no-op: the server-side TTL already removes entries past the
// eviction window.
func (rs *RedisStore) Sweep(_ context.Context) int { return 0 }

func (rs *RedisStore) Len(ctx context.Context) int {
	keys, err := rs.client.Keys(ctx, rs.wrapKey("*")).Result()
	if err != nil {
		return 0
	}
	return len(keys)
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) putEnv(ctx context.Context, key string, e *envelope) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, rs.wrapKey(key), data, 2*rs.freshFor).Err()
}

func (rs *RedisStore) getEnv(ctx context.Context, key string) (*envelope, error) {
	data, err := rs.client.Get(ctx, rs.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (rs *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, key)
}
