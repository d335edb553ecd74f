package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"IndexForge/internal/domain/models"
	"IndexForge/internal/service/fetch"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- shared pipeline test fixtures ---

type fakeSizing struct {
	snapshot models.SizingSnapshot
	err      error
	notReady error
	calls    int32
}

func (f *fakeSizing) FetchSizing(_ context.Context, _ []string) (models.SizingSnapshot, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeSizing) Source() string { return "fake" }
func (f *fakeSizing) Ready() error   { return f.notReady }

type fakeHistory struct {
	series   map[string]*models.AssetSeries
	errs     map[string]error
	err      error
	notReady error
	calls    int32
}

func (f *fakeHistory) FetchHistory(_ context.Context, key string, _ int) (*models.AssetSeries, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if s, ok := f.series[key]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no series for %s", key)
}

func (f *fakeHistory) Source() string { return "fake" }
func (f *fakeHistory) Ready() error   { return f.notReady }

func day(offset int) time.Time {
	return time.Date(2026, time.March, 1+offset, 0, 0, 0, 0, time.UTC)
}

func seriesOf(id string, prices ...float64) *models.AssetSeries {
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Timestamp: day(i), Price: p}
	}
	return &models.AssetSeries{ID: id, Symbol: strings.ToUpper(id), Points: points}
}

func sizingOf(caps map[string]float64) models.SizingSnapshot {
	s := make(models.SizingSnapshot, len(caps))
	for id, cap := range caps {
		s[id] = models.AssetSizing{ID: id, Symbol: strings.ToUpper(id), MarketCap: cap, LastPrice: 1, Volume24h: 1}
	}
	return s
}

func testConfig(freshFor time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Cache.Backend = "memory"
	cfg.Cache.FreshFor = freshFor
	cfg.Index.Assets = []config.AssetRef{
		{ID: "bitcoin", Symbol: "BTC"},
		{ID: "ethereum", Symbol: "ETH"},
	}
	cfg.Index.MinWeight = 0.05
	cfg.Index.MaxWeight = 0.5
	cfg.Compare.Symbols = []string{"AAPL", "MSFT"}
	return cfg
}

func testStore(cfg *config.Config) cache.Store {
	return cache.NewMemoryStore(cache.WithMemoryFreshFor(cfg.Cache.FreshFor))
}

// --- tests ---

func TestIndexPipelineSuccess(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 600e9, "ethereum": 300e9})}
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin":  seriesOf("bitcoin", 100, 110, 120),
		"ethereum": seriesOf("ethereum", 10, 11, 12),
	}}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	require.True(t, resp.OK, "unexpected failure: %s %s", resp.Step, resp.Details)
	require.Len(t, resp.Points, 3)
	assert.InDelta(t, 100.0, resp.Points[0].V, 1e-6, "baseline day anchors at 100")
	assert.Greater(t, resp.Points[2].V, resp.Points[0].V)

	require.Len(t, resp.Weights, 2)
	assert.Equal(t, "bitcoin", resp.Weights[0].ID, "heaviest asset first")
	sum := 0.0
	for _, w := range resp.Weights {
		sum += w.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	require.NotNil(t, resp.Last)
	require.NotNil(t, resp.Provenance)
	assert.Equal(t, models.StatusLive, resp.Provenance.Status)
	assert.Equal(t, "fake", resp.Provenance.Source)
}

func TestIndexPipelineSecondRunServesFromCache(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 2, "ethereum": 1})}
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin":  seriesOf("bitcoin", 100, 110),
		"ethereum": seriesOf("ethereum", 10, 11),
	}}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())

	require.True(t, p.Run(context.Background(), &models.IndexRequest{Range: "1M"}).OK)
	require.True(t, p.Run(context.Background(), &models.IndexRequest{Range: "1M"}).OK)

	assert.Equal(t, int32(1), atomic.LoadInt32(&sizing.calls), "fresh sizing must not refetch")
	assert.Equal(t, int32(2), atomic.LoadInt32(&history.calls), "fresh histories must not refetch")
}

func TestIndexPipelineMissingCredentials(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{notReady: fmt.Errorf("COINGECKO_API_KEY is not set")}
	history := &fakeHistory{}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepEnvValidation, resp.Step)
	assert.Zero(t, atomic.LoadInt32(&history.calls), "no upstream work before credentials check")
}

func TestIndexPipelineInsufficientSizing(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 600e9, "ethereum": 0})}
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin":  seriesOf("bitcoin", 100, 110),
		"ethereum": seriesOf("ethereum", 10, 11),
	}}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepCalculateWeights, resp.Step)
}

func TestIndexPipelineStaleServeAfterUpstreamFailure(t *testing.T) {
	cfg := testConfig(40 * time.Millisecond)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 2, "ethereum": 1})}
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin":  seriesOf("bitcoin", 100, 110),
		"ethereum": seriesOf("ethereum", 10, 11),
	}}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	require.True(t, p.Run(context.Background(), &models.IndexRequest{Range: "1M"}).OK)

	// Let the entries age into the stale window, then kill the upstream.
	time.Sleep(60 * time.Millisecond)
	sizing.err = &fetch.Error{Kind: fetch.KindTransport, Err: fmt.Errorf("connection refused")}
	history.err = &fetch.Error{Kind: fetch.KindTransport, Err: fmt.Errorf("connection refused")}

	resp := p.Run(context.Background(), &models.IndexRequest{Range: "1M"})
	require.True(t, resp.OK, "stale cache outranks a hard failure")
	require.NotNil(t, resp.Provenance)
	assert.Equal(t, models.StatusDegraded, resp.Provenance.Status)
}

func TestIndexPipelineUpstreamFailureWithoutCache(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{err: &fetch.Error{
		Kind:        fetch.KindApplication,
		Status:      500,
		BodyPreview: "boom",
		Err:         fmt.Errorf("unexpected status 500"),
	}}
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin":  seriesOf("bitcoin", 100),
		"ethereum": seriesOf("ethereum", 10),
	}}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepFetchSizing, resp.Step)
	assert.Equal(t, 500, resp.UpstreamStatus)
	assert.Equal(t, "boom", resp.UpstreamBodyPreview)
}

func TestIndexPipelineToleratesPartialHistoryFailure(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 2, "ethereum": 1})}
	history := &fakeHistory{
		series: map[string]*models.AssetSeries{"bitcoin": seriesOf("bitcoin", 100, 110, 120)},
		errs:   map[string]error{"ethereum": fmt.Errorf("provider timeout")},
	}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	require.True(t, resp.OK, "one failed asset must not abort the run")
	assert.Len(t, resp.Points, 3)
}

func TestIndexPipelineAllHistoriesFail(t *testing.T) {
	cfg := testConfig(time.Minute)
	sizing := &fakeSizing{snapshot: sizingOf(map[string]float64{"bitcoin": 2, "ethereum": 1})}
	history := &fakeHistory{err: fmt.Errorf("provider down")}

	p := NewIndexPipeline(cfg, sizing, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.IndexRequest{Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepFetchHistory, resp.Step)
}
