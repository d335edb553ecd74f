package di

import (
	"IndexForge/internal/domain/repository"
	dsvc "IndexForge/internal/domain/service"
	"IndexForge/internal/handler/api"
	"IndexForge/internal/service/alphavantage"
	"IndexForge/internal/service/coingecko"
	"IndexForge/internal/service/fetch"
	"IndexForge/internal/service/poller"
	"IndexForge/internal/usecase"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	xhttp "IndexForge/pkg/http"
	applogger "IndexForge/pkg/logger"
	"IndexForge/pkg/metrics"
	"IndexForge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Log.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Log.Output
	if output == "" {
		output = "stdout"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheStore creates the configured cache backend.
func ProvideCacheStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisFreshFor(cfg.Cache.FreshFor),
		)
	case "layered":
		return cache.NewLayeredStore(
			cache.WithLayeredFreshFor(cfg.Cache.FreshFor),
			cache.WithLayeredMaxEntries(cfg.Cache.MaxEntries),
			cache.WithLayeredRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix),
		)
	default:
		return cache.NewMemoryStore(
			cache.WithMemoryFreshFor(cfg.Cache.FreshFor),
			cache.WithMemoryMaxEntries(cfg.Cache.MaxEntries),
		), nil
	}
}

// fetchConfig maps the shared fetch settings onto one provider's client.
func fetchConfig(cfg *config.Config, name string) fetch.Config {
	return fetch.Config{
		Name: name,
		Policy: fetch.Policy{
			Attempts:  cfg.Fetch.Attempts,
			BaseDelay: cfg.Fetch.BaseDelay,
			MaxDelay:  cfg.Fetch.MaxDelay,
			Timeout:   cfg.Fetch.Timeout,
		},
		RPS:      cfg.Fetch.Rate.RPS,
		Burst:    cfg.Fetch.Rate.Burst,
		Breaker:  cfg.Fetch.Breaker.Enabled,
		Failures: cfg.Fetch.Breaker.Failures,
		Cooldown: cfg.Fetch.Breaker.Cooldown,
	}
}

// ProvideCoinGecko creates the crypto sizing and history provider.
func ProvideCoinGecko(cfg *config.Config, log *applogger.Logger, m repository.Metrics) *coingecko.Client {
	return coingecko.New(cfg, fetch.New(fetchConfig(cfg, "coingecko"), log, m))
}

// ProvideAlphaVantage creates the equity history provider.
func ProvideAlphaVantage(cfg *config.Config, log *applogger.Logger, m repository.Metrics) *alphavantage.Client {
	return alphavantage.New(cfg, fetch.New(fetchConfig(cfg, "alphavantage"), log, m))
}

// ProvideIndexPipeline creates the composite index pipeline. CoinGecko serves
// as both the sizing and the history source.
func ProvideIndexPipeline(cfg *config.Config, cg *coingecko.Client, store cache.Store, m repository.Metrics, log *applogger.Logger) *usecase.IndexPipeline {
	return usecase.NewIndexPipeline(cfg, cg, cg, store, m, log)
}

// ProvideReturnsPipeline creates the single-asset percent-return pipeline.
func ProvideReturnsPipeline(cfg *config.Config, cg *coingecko.Client, store cache.Store, m repository.Metrics, log *applogger.Logger) *usecase.ReturnsPipeline {
	return usecase.NewReturnsPipeline(cfg, cg, store, m, log)
}

// ProvideComparePipeline creates the equity comparison pipeline.
func ProvideComparePipeline(cfg *config.Config, av *alphavantage.Client, store cache.Store, m repository.Metrics, log *applogger.Logger) *usecase.ComparePipeline {
	return usecase.NewComparePipeline(cfg, av, store, m, log)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	log *applogger.Logger,
	index *usecase.IndexPipeline,
	returns *usecase.ReturnsPipeline,
	compare *usecase.ComparePipeline,
	store cache.Store,
) xhttp.Handler {
	return api.NewIndexHandler(cfg, log, index, returns, compare, store)
}

// ProvidePoller creates the cache-warming poller, or nil when disabled.
func ProvidePoller(
	cfg *config.Config,
	index *usecase.IndexPipeline,
	compare *usecase.ComparePipeline,
	log *applogger.Logger,
) (*poller.Poller, error) {
	if !cfg.Poller.Enabled {
		return nil, nil
	}
	schedule := cfg.Poller.Schedule
	if schedule == "" {
		schedule = "@every 10m"
	}
	return poller.New(schedule, []dsvc.Warmable{index, compare}, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler xhttp.Handler,
	store cache.Store,
	p *poller.Poller,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, handler, store, p, log)
}
