package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"IndexForge/internal/service/poller"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	xhttp "IndexForge/pkg/http"
	applogger "IndexForge/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server, the cache
// backend and the optional cache-warming poller.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	store      cache.Store
	poller     *poller.Poller
	log        *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. The poller may be nil.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	store cache.Store,
	p *poller.Poller,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:     cfg,
		handler: handler,
		store:   store,
		poller:  p,
		log:     log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.shutdownTimeout()),
		xhttp.WithMetricsPath(metricsPath),
	)

	if a.poller != nil {
		a.poller.Start()
		a.log.Info("poller started", applogger.String("schedule", a.cfg.Poller.Schedule))
	}

	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("cache", a.cfg.Cache.Backend),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	if a.poller != nil {
		a.poller.Stop(ctx)
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
