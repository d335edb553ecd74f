package usecase

import (
	"context"
	"fmt"
	"time"

	"IndexForge/internal/domain/models"
	drepo "IndexForge/internal/domain/repository"
	"IndexForge/internal/services/indexcalc"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"
)

// ReturnsPipeline serves the percent-return series for one basket asset.
type ReturnsPipeline struct {
	cfg     *config.Config
	history drepo.HistorySource
	loader  loader
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewReturnsPipeline creates the single-asset percent-return pipeline.
func NewReturnsPipeline(
	cfg *config.Config,
	history drepo.HistorySource,
	store cache.Store,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *ReturnsPipeline {
	return &ReturnsPipeline{
		cfg:     cfg,
		history: history,
		loader:  newLoader(cfg, store, metrics, log),
		metrics: metrics,
		log:     log,
	}
}

// Run executes one pipeline pass for the requested asset.
func (p *ReturnsPipeline) Run(ctx context.Context, req *models.ReturnsRequest) (resp *models.IndexResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp = p.fail(StepInternal, fmt.Errorf("panic: %v", r))
		}
		if p.metrics != nil {
			p.metrics.RecordLatency("returns", time.Since(start).Seconds())
		}
	}()

	if err := p.history.Ready(); err != nil {
		return p.fail(StepEnvValidation, err)
	}

	days := drepo.NormalizeRange(req.Range).Days(time.Now())

	series, wroteAt, err := p.loader.history(ctx, p.history, req.ID, days)
	if err != nil {
		return p.fail(StepFetchHistory, err)
	}

	var prov provenanceTracker
	prov.note(wroteAt)

	points := indexcalc.PercentReturns(series.Points)
	if len(points) == 0 {
		return p.fail(StepComputeIndex, fmt.Errorf("no valid samples for %s", req.ID))
	}

	// Raw provider series can carry a same-day live point next to the daily
	// close, so the change compares against the last distinct calendar day.
	last := indexcalc.LastChangeDistinctDay(points)

	return &models.IndexResponse{
		OK:         true,
		Points:     renderPoints(points),
		Last:       last,
		Provenance: prov.provenance(p.history.Source(), p.loader.freshFor),
	}
}

func (p *ReturnsPipeline) fail(step string, err error) *models.IndexResponse {
	recordSoftFailure(p.metrics, p.log, "returns", step, err)
	return softIndexFailure(step, err)
}
