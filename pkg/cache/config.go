package cache

import "time"

// MemoryConfig holds memory store settings.
type MemoryConfig struct {
	MaxEntries int
	FreshFor   time.Duration
}

// MemoryOption configures the memory store.
type MemoryOption func(*MemoryConfig)

func WithMemoryMaxEntries(n int) MemoryOption {
	return func(c *MemoryConfig) {
		if n > 0 {
			c.MaxEntries = n
		}
	}
}

func WithMemoryFreshFor(d time.Duration) MemoryOption {
	return func(c *MemoryConfig) {
		if d > 0 {
			c.FreshFor = d
		}
	}
}

// RedisConfig holds Redis store settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	FreshFor time.Duration
}

// RedisOption configures the Redis store.
type RedisOption func(*RedisConfig)

func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) {
		if addr != "" {
			c.Addr = addr
		}
	}
}

func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		if prefix != "" {
			c.Prefix = prefix
		}
	}
}

func WithRedisFreshFor(d time.Duration) RedisOption {
	return func(c *RedisConfig) {
		if d > 0 {
			c.FreshFor = d
		}
	}
}

// LayeredConfig holds layered store settings.
type LayeredConfig struct {
	FreshFor      time.Duration
	MaxEntries    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// LayeredOption configures the layered store.
type LayeredOption func(*LayeredConfig)

func WithLayeredFreshFor(d time.Duration) LayeredOption {
	return func(c *LayeredConfig) {
		if d > 0 {
			c.FreshFor = d
		}
	}
}

func WithLayeredMaxEntries(n int) LayeredOption {
	return func(c *LayeredConfig) {
		if n > 0 {
			c.MaxEntries = n
		}
	}
}

func WithLayeredRedis(addr, password string, db int, prefix string) LayeredOption {
	return func(c *LayeredConfig) {
		c.RedisAddr = addr
		c.RedisPassword = password
		c.RedisDB = db
		c.RedisPrefix = prefix
	}
}
