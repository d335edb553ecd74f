//go:build wireinject
// +build wireinject

package di

import (
	"IndexForge/pkg/config"
	"IndexForge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCacheStore,

		// Provider clients
		ProvideCoinGecko,
		ProvideAlphaVantage,

		// Pipelines
		ProvideIndexPipeline,
		ProvideReturnsPipeline,
		ProvideComparePipeline,

		// HTTP surface and background warming
		ProvideHandler,
		ProvidePoller,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
