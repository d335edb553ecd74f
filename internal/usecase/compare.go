package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"IndexForge/internal/domain/models"
	drepo "IndexForge/internal/domain/repository"
	"IndexForge/internal/services/indexcalc"
	"IndexForge/internal/services/timeseries"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"
	"IndexForge/pkg/util"

	"golang.org/x/sync/errgroup"
)

// ComparePipeline builds dense, aligned percent-return series for a set of
// equity tickers so they can be charted against each other.
type ComparePipeline struct {
	cfg     *config.Config
	history drepo.HistorySource
	loader  loader
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewComparePipeline creates the cross-market comparison pipeline.
func NewComparePipeline(
	cfg *config.Config,
	history drepo.HistorySource,
	store cache.Store,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *ComparePipeline {
	return &ComparePipeline{
		cfg:     cfg,
		history: history,
		loader:  newLoader(cfg, store, metrics, log),
		metrics: metrics,
		log:     log,
	}
}

// Name identifies the pipeline to the poller.
func (p *ComparePipeline) Name() string { return "compare" }

// Warm runs the pipeline for the configured watchlist and default window.
func (p *ComparePipeline) Warm(ctx context.Context) error {
	resp := p.Run(ctx, &models.CompareRequest{Range: string(drepo.DefaultRange())})
	if !resp.OK {
		return fmt.Errorf("%s: %s", resp.Step, resp.Error)
	}
	return nil
}

// Run executes one pipeline pass. Tickers whose fetch fails drop out of the
// comparison; only a run with zero usable tickers degrades.
func (p *ComparePipeline) Run(ctx context.Context, req *models.CompareRequest) (resp *models.CompareResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp = p.fail(StepInternal, fmt.Errorf("panic: %v", r))
		}
		if p.metrics != nil {
			p.metrics.RecordLatency("compare", time.Since(start).Seconds())
		}
	}()

	if err := p.history.Ready(); err != nil {
		return p.fail(StepEnvValidation, err)
	}

	symbols := util.SplitList(req.Symbols)
	if len(symbols) == 0 {
		symbols = p.cfg.Compare.Symbols
	}
	for i, s := range symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	days := drepo.NormalizeRange(req.Range).Days(time.Now())

	type historyResult struct {
		series  *models.AssetSeries
		wroteAt time.Time
		err     error
	}
	results := make([]historyResult, len(symbols))

	var g errgroup.Group
	g.SetLimit(fetchParallelism)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			r := &results[i]
			r.series, r.wroteAt, r.err = p.loader.history(ctx, p.history, symbol, days)
			return nil
		})
	}
	_ = g.Wait()

	var prov provenanceTracker
	series := make([]*models.AssetSeries, 0, len(results))
	var historyErr error
	for _, r := range results {
		if r.err != nil {
			if historyErr == nil {
				historyErr = r.err
			}
			continue
		}
		series = append(series, r.series)
		prov.note(r.wroteAt)
	}
	if len(series) == 0 {
		return p.fail(StepFetchHistory, historyErr)
	}

	aligned := timeseries.Align(series)
	if len(aligned) == 0 {
		return p.fail(StepAlignSeries, fmt.Errorf("no usable samples across %d tickers", len(series)))
	}
	// Equity calendars diverge on holidays; forward-fill makes every ticker
	// dense over the shared timeline.
	filled := timeseries.ForwardFill(aligned)

	out := make([]models.CompareSeries, 0, len(series))
	for _, s := range series {
		returns := indexcalc.PercentReturns(tickerSamples(filled, s.ID))
		if len(returns) == 0 {
			continue
		}
		out = append(out, models.CompareSeries{
			ID:         s.ID,
			Symbol:     s.Symbol,
			Points:     renderPoints(returns),
			Last:       indexcalc.LastChangeDistinctDay(returns),
			Volatility: indexcalc.Volatility(returns),
		})
	}
	if len(out) == 0 {
		return p.fail(StepComputeIndex, nil)
	}

	return &models.CompareResponse{
		OK:         true,
		Series:     out,
		Provenance: prov.provenance(p.history.Source(), p.loader.freshFor),
	}
}

func (p *ComparePipeline) fail(step string, err error) *models.CompareResponse {
	recordSoftFailure(p.metrics, p.log, "compare", step, err)
	return softCompareFailure(step, err)
}

// tickerSamples extracts one ticker's day-ordered samples from the aligned
// timeline.
func tickerSamples(points []models.AlignedPoint, id string) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		if v, ok := p.Prices[id]; ok {
			out = append(out, models.PricePoint{Timestamp: p.Day, Price: v})
		}
	}
	return out
}
