package repository

import (
	"context"

	"IndexForge/internal/domain/models"
)

// SizingSource provides the per-asset sizing snapshot for a basket.
type SizingSource interface {
	FetchSizing(ctx context.Context, ids []string) (models.SizingSnapshot, error)
	Source() string
	Ready() error // non-nil when the provider is missing its credentials
}

// HistorySource provides daily price history for one asset. The key is an
// asset ID or a ticker symbol depending on the provider.
type HistorySource interface {
	FetchHistory(ctx context.Context, key string, days int) (*models.AssetSeries, error)
	Source() string
	Ready() error
}

// Metrics records operational counters for the pipelines.
type Metrics interface {
	RecordFetch(provider, outcome string)
	RecordCacheLookup(state string)
	RecordSoftFailure(step string)
	RecordIndexValue(series string, value float64)
	RecordLatency(op string, seconds float64)
}
