package service

import "context"

// Warmable is implemented by pipelines whose results the poller can
// pre-compute so interactive requests hit a warm cache.
type Warmable interface {
	Name() string
	Warm(ctx context.Context) error
}
