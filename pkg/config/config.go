package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AssetRef identifies one tracked basket constituent.
type AssetRef struct {
	ID     string `yaml:"id"`
	Symbol string `yaml:"symbol"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Cache struct {
		Backend    string        `yaml:"backend"` // memory, redis or layered
		FreshFor   time.Duration `yaml:"fresh_for"`
		MaxEntries int           `yaml:"max_entries"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Fetch struct {
		Attempts  int           `yaml:"attempts"`
		BaseDelay time.Duration `yaml:"base_delay"`
		MaxDelay  time.Duration `yaml:"max_delay"`
		Timeout   time.Duration `yaml:"timeout"`
		Breaker   struct {
			Enabled  bool          `yaml:"enabled"`
			Failures uint32        `yaml:"failures"`
			Cooldown time.Duration `yaml:"cooldown"`
		} `yaml:"breaker"`
		Rate struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate"`
	} `yaml:"fetch"`
	CoinGecko struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		Currency string `yaml:"currency"`
	} `yaml:"coingecko"`
	AlphaVantage struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"alphavantage"`
	Index struct {
		Assets    []AssetRef `yaml:"assets"`
		MinWeight float64    `yaml:"min_weight"`
		MaxWeight float64    `yaml:"max_weight"`
	} `yaml:"index"`
	Compare struct {
		Symbols []string `yaml:"symbols"`
	} `yaml:"compare"`
	Poller struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"`
	} `yaml:"poller"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Provider API keys are deliberately optional here: a missing key is reported
// per request as an env_validation soft failure, not a startup crash.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("COMPARE_SYMBOLS"); v != "" {
		c.Compare.Symbols = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if len(c.Index.Assets) == 0 {
		return fmt.Errorf("index.assets cannot be empty")
	}
	for _, a := range c.Index.Assets {
		if a.ID == "" || a.Symbol == "" {
			return fmt.Errorf("index.assets entries need both id and symbol")
		}
	}
	if c.Index.MinWeight < 0 || c.Index.MaxWeight <= 0 || c.Index.MinWeight >= c.Index.MaxWeight {
		return fmt.Errorf("index weight bounds invalid: min=%v max=%v", c.Index.MinWeight, c.Index.MaxWeight)
	}
	if c.Index.MaxWeight > 1 {
		return fmt.Errorf("index.max_weight cannot exceed 1, got %v", c.Index.MaxWeight)
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1")
	}
	return nil
}
