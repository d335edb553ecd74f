package usecase

import (
	"context"
	"strings"
	"time"

	"IndexForge/internal/domain/models"
	drepo "IndexForge/internal/domain/repository"
	"IndexForge/internal/service/fetch"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"
)

// Pipeline steps reported in soft failures. Consumers branch on these, so
// they are part of the API surface.
const (
	StepEnvValidation    = "env_validation"
	StepFetchSizing      = "fetch_sizing"
	StepFetchHistory     = "fetch_history"
	StepCalculateWeights = "calculate_weights"
	StepAlignSeries      = "align_series"
	StepComputeIndex     = "compute_index"
	StepInternal         = "internal"
)

// stepMessage is the short human text paired with each failing step.
func stepMessage(step string) string {
	switch step {
	case StepEnvValidation:
		return "provider credentials missing"
	case StepFetchSizing:
		return "sizing fetch failed"
	case StepFetchHistory:
		return "history fetch failed"
	case StepCalculateWeights:
		return "weight calculation failed"
	case StepAlignSeries:
		return "no aligned days"
	case StepComputeIndex:
		return "no computable points"
	default:
		return "internal error"
	}
}

// softIndexFailure builds the degraded envelope for the index and returns
// endpoints, lifting upstream detail out of classified fetch errors.
func softIndexFailure(step string, err error) *models.IndexResponse {
	resp := &models.IndexResponse{OK: false, Step: step, Error: stepMessage(step)}
	if err != nil {
		resp.Details = err.Error()
		if fe, ok := fetch.AsError(err); ok {
			resp.UpstreamStatus = fe.Status
			resp.UpstreamBodyPreview = fe.BodyPreview
		}
	}
	return resp
}

// softCompareFailure builds the degraded envelope for the compare endpoint.
func softCompareFailure(step string, err error) *models.CompareResponse {
	resp := &models.CompareResponse{OK: false, Step: step, Error: stepMessage(step)}
	if err != nil {
		resp.Details = err.Error()
		if fe, ok := fetch.AsError(err); ok {
			resp.UpstreamStatus = fe.Status
			resp.UpstreamBodyPreview = fe.BodyPreview
		}
	}
	return resp
}

// recordSoftFailure counts and logs a degraded pipeline outcome.
func recordSoftFailure(metrics drepo.Metrics, log *applogger.Logger, pipeline, step string, err error) {
	if metrics != nil {
		metrics.RecordSoftFailure(step)
	}
	if log != nil {
		fields := []applogger.Field{
			applogger.String("pipeline", pipeline),
			applogger.String("step", step),
		}
		if err != nil {
			fields = append(fields, applogger.Error(err))
		}
		log.Warn("pipeline degraded", fields...)
	}
}

// loader runs fetch-through-cache with the stale fallback policy: a fresh
// entry serves directly, a miss goes upstream, and an upstream failure falls
// back to a stale entry when one exists. Failed fetches never remove entries.
type loader struct {
	store    cache.Store
	freshFor time.Duration
	metrics  drepo.Metrics
	log      *applogger.Logger
}

// newLoader builds the loader from the configured cache freshness window.
func newLoader(cfg *config.Config, store cache.Store, metrics drepo.Metrics, log *applogger.Logger) loader {
	freshFor := cfg.Cache.FreshFor
	if freshFor <= 0 {
		freshFor = 5 * time.Minute
	}
	return loader{store: store, freshFor: freshFor, metrics: metrics, log: log}
}

// sizing loads the basket sizing snapshot through the cache.
func (l loader) sizing(ctx context.Context, src drepo.SizingSource, ids []string) (models.SizingSnapshot, time.Time, error) {
	key := cache.GenerateKeyWithParams("sizing", src.Source(), strings.Join(ids, ","))

	var cached models.SizingSnapshot
	lookup := l.lookup(ctx, key, &cached)
	if lookup.State == cache.StateFresh {
		return cached, lookup.WroteAt, nil
	}

	snapshot, err := src.FetchSizing(ctx, ids)
	if err == nil {
		l.put(ctx, key, snapshot)
		return snapshot, time.Now(), nil
	}

	if lookup.State == cache.StateStale {
		l.logStaleServe(key, err)
		return cached, lookup.WroteAt, nil
	}
	return nil, time.Time{}, err
}

// history loads one asset's daily series through the cache.
func (l loader) history(ctx context.Context, src drepo.HistorySource, key string, days int) (*models.AssetSeries, time.Time, error) {
	cacheKey := cache.GenerateKeyWithParams("history", src.Source(), key, days)

	var cached models.AssetSeries
	lookup := l.lookup(ctx, cacheKey, &cached)
	if lookup.State == cache.StateFresh {
		return &cached, lookup.WroteAt, nil
	}

	series, err := src.FetchHistory(ctx, key, days)
	if err == nil {
		l.put(ctx, cacheKey, series)
		return series, time.Now(), nil
	}

	if lookup.State == cache.StateStale {
		l.logStaleServe(cacheKey, err)
		return &cached, lookup.WroteAt, nil
	}
	return nil, time.Time{}, err
}

// lookup reads the cache, treating backend errors as misses so a broken
// cache degrades to live fetching instead of failing the pipeline.
func (l loader) lookup(ctx context.Context, key string, dest interface{}) cache.Lookup {
	lookup, err := l.store.Get(ctx, key, dest)
	if err != nil {
		if l.log != nil {
			l.log.Warn("cache lookup failed", applogger.String("key", key), applogger.Error(err))
		}
		lookup = cache.Lookup{State: cache.StateMiss}
	}
	if l.metrics != nil {
		l.metrics.RecordCacheLookup(lookup.State.String())
	}
	return lookup
}

func (l loader) put(ctx context.Context, key string, value interface{}) {
	if err := l.store.Put(ctx, key, value); err != nil && l.log != nil {
		l.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (l loader) logStaleServe(key string, err error) {
	if l.log != nil {
		l.log.Warn("serving stale cache entry after upstream failure",
			applogger.String("key", key),
			applogger.Error(err),
		)
	}
}

// provenanceTracker remembers the oldest cache write a run consumed, which
// bounds how old the served payload can be.
type provenanceTracker struct {
	updatedAt time.Time
}

func (pt *provenanceTracker) note(wroteAt time.Time) {
	if wroteAt.IsZero() {
		return
	}
	if pt.updatedAt.IsZero() || wroteAt.Before(pt.updatedAt) {
		pt.updatedAt = wroteAt
	}
}

// provenance derives the served-data age bucket from the cache windows:
// LIVE inside the freshness window, DEGRADED inside the stale window,
// STALE beyond both.
func (pt *provenanceTracker) provenance(source string, freshFor time.Duration) *models.Provenance {
	updatedAt := pt.updatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	status := models.StatusLive
	age := time.Since(updatedAt)
	switch {
	case age < freshFor:
		status = models.StatusLive
	case age < 2*freshFor:
		status = models.StatusDegraded
	default:
		status = models.StatusStale
	}

	return &models.Provenance{
		Source:    source,
		Status:    status,
		UpdatedAt: updatedAt.UTC(),
	}
}

// renderPoints formats a computed series for the response payload.
func renderPoints(series []models.IndexPoint) []models.Point {
	out := make([]models.Point, len(series))
	for i, p := range series {
		out[i] = models.Point{T: p.Day.Format("2006-01-02"), V: p.Value}
	}
	return out
}
