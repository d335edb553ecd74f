package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"IndexForge/internal/domain/models"
	drepo "IndexForge/internal/domain/repository"
	"IndexForge/internal/services/indexcalc"
	"IndexForge/internal/services/timeseries"
	"IndexForge/internal/services/weights"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"
	"IndexForge/pkg/util"

	"golang.org/x/sync/errgroup"
)

// fetchParallelism bounds concurrently in-flight upstream calls per run.
const fetchParallelism = 4

// IndexPipeline builds the weighted composite index for the crypto basket:
// sizing and per-asset histories are fetched through the cache in parallel,
// weights and alignment run on the joined results, and the index engine
// produces the base-100 series.
type IndexPipeline struct {
	cfg     *config.Config
	sizing  drepo.SizingSource
	history drepo.HistorySource
	loader  loader
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewIndexPipeline creates the composite index pipeline. Metrics may be nil.
func NewIndexPipeline(
	cfg *config.Config,
	sizing drepo.SizingSource,
	history drepo.HistorySource,
	store cache.Store,
	metrics drepo.Metrics,
	log *applogger.Logger,
) *IndexPipeline {
	return &IndexPipeline{
		cfg:     cfg,
		sizing:  sizing,
		history: history,
		loader:  newLoader(cfg, store, metrics, log),
		metrics: metrics,
		log:     log,
	}
}

// Name identifies the pipeline to the poller.
func (p *IndexPipeline) Name() string { return "index" }

// Warm runs the pipeline for the default window so the cache is populated
// before interactive requests arrive.
func (p *IndexPipeline) Warm(ctx context.Context) error {
	resp := p.Run(ctx, &models.IndexRequest{Range: string(drepo.DefaultRange())})
	if !resp.OK {
		return fmt.Errorf("%s: %s", resp.Step, resp.Error)
	}
	return nil
}

// Run executes one pipeline pass. It never returns an error: every stage
// failure becomes a soft-failure envelope, and a panic is caught at this
// boundary and reported as an internal step.
func (p *IndexPipeline) Run(ctx context.Context, req *models.IndexRequest) (resp *models.IndexResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			resp = p.fail(StepInternal, fmt.Errorf("panic: %v", r))
		}
		if p.metrics != nil {
			p.metrics.RecordLatency("index", time.Since(start).Seconds())
		}
	}()

	if err := p.sizing.Ready(); err != nil {
		return p.fail(StepEnvValidation, err)
	}

	ids := util.SplitList(req.IDs)
	if len(ids) == 0 {
		for _, a := range p.cfg.Index.Assets {
			ids = append(ids, a.ID)
		}
	}
	days := drepo.NormalizeRange(req.Range).Days(time.Now())

	var (
		snapshot  models.SizingSnapshot
		sizingAt  time.Time
		sizingErr error
	)
	type historyResult struct {
		series  *models.AssetSeries
		wroteAt time.Time
		err     error
	}
	results := make([]historyResult, len(ids))

	// Sizing and every asset's history go out concurrently; a failed fetch
	// parks its error in the slot instead of aborting the rest.
	var g errgroup.Group
	g.SetLimit(fetchParallelism)
	g.Go(func() error {
		snapshot, sizingAt, sizingErr = p.loader.sizing(ctx, p.sizing, ids)
		return nil
	})
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			r := &results[i]
			r.series, r.wroteAt, r.err = p.loader.history(ctx, p.history, id, days)
			return nil
		})
	}
	_ = g.Wait()

	if sizingErr != nil {
		return p.fail(StepFetchSizing, sizingErr)
	}

	var prov provenanceTracker
	prov.note(sizingAt)

	assignment, err := weights.Compute(snapshot, p.cfg.Index.MinWeight, p.cfg.Index.MaxWeight)
	if err != nil {
		return p.fail(StepCalculateWeights, err)
	}

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
		return p.fail(StepAlignSeries, fmt.Errorf("no usable samples across %d assets", len(series)))
	}

	points := indexcalc.Composite(aligned, assignment)
	if len(points) == 0 {
		return p.fail(StepComputeIndex, nil)
	}

	// The aligned timeline has unique days, so the prior-element delta is the
	// day-over-day change.
	last := indexcalc.LastChangePriorPoint(points)
	if p.metrics != nil {
		p.metrics.RecordIndexValue("composite", last.V)
	}

	return &models.IndexResponse{
		OK:         true,
		Points:     renderPoints(points),
		Weights:    weightEntries(assignment, snapshot),
		Last:       last,
		Provenance: prov.provenance(p.sizing.Source(), p.loader.freshFor),
	}
}

func (p *IndexPipeline) fail(step string, err error) *models.IndexResponse {
	recordSoftFailure(p.metrics, p.log, "index", step, err)
	return softIndexFailure(step, err)
}

// weightEntries renders the assignment with per-asset sizing metadata,
// heaviest first.
func weightEntries(assignment models.WeightAssignment, snapshot models.SizingSnapshot) []models.WeightEntry {
	out := make([]models.WeightEntry, 0, len(assignment))
	for id, w := range assignment {
		s := snapshot[id]
		out = append(out, models.WeightEntry{
			ID:        id,
			Symbol:    s.Symbol,
			Weight:    w,
			MarketCap: s.MarketCap,
			LastPrice: s.LastPrice,
			Volume24h: s.Volume24h,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}
