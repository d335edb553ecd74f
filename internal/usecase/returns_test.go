package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"IndexForge/internal/domain/models"
	applogger "IndexForge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnsPipelineForwardFillsInvalidSamples(t *testing.T) {
	cfg := testConfig(time.Minute)
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin": seriesOf("bitcoin", 10, 0, 12),
	}}

	p := NewReturnsPipeline(cfg, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.ReturnsRequest{ID: "bitcoin", Range: "3M"})

	require.True(t, resp.OK, "unexpected failure: %s %s", resp.Step, resp.Details)
	require.Len(t, resp.Points, 3)
	assert.InDelta(t, 0.0, resp.Points[0].V, 1e-9)
	assert.InDelta(t, 0.0, resp.Points[1].V, 1e-9, "invalid sample carries the last valid value")
	assert.InDelta(t, 20.0, resp.Points[2].V, 1e-9)
}

func TestReturnsPipelineAllInvalidSeries(t *testing.T) {
	cfg := testConfig(time.Minute)
	history := &fakeHistory{series: map[string]*models.AssetSeries{
		"bitcoin": seriesOf("bitcoin", 0, 0, 0),
	}}

	p := NewReturnsPipeline(cfg, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.ReturnsRequest{ID: "bitcoin", Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepComputeIndex, resp.Step)
}

func TestReturnsPipelineChangeSkipsSameDayDuplicates(t *testing.T) {
	cfg := testConfig(time.Minute)

	// Daily closes plus a same-day live point: the change must compare against
	// the last distinct calendar day, not the duplicate.
	series := &models.AssetSeries{
		ID:     "bitcoin",
		Symbol: "BTC",
		Points: []models.PricePoint{
			{Timestamp: day(0), Price: 10},
			{Timestamp: day(1), Price: 11},
			{Timestamp: day(1).Add(6 * time.Hour), Price: 12},
		},
	}
	history := &fakeHistory{series: map[string]*models.AssetSeries{"bitcoin": series}}

	p := NewReturnsPipeline(cfg, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.ReturnsRequest{ID: "bitcoin", Range: "3M"})

	require.True(t, resp.OK)
	require.NotNil(t, resp.Last)
	assert.InDelta(t, 20.0, resp.Last.V, 1e-9)
	assert.InDelta(t, 20.0, resp.Last.ChangeAbs, 1e-9, "delta against day(0), not the same-day point")
}

func TestReturnsPipelineMissingCredentials(t *testing.T) {
	cfg := testConfig(time.Minute)
	history := &fakeHistory{notReady: fmt.Errorf("COINGECKO_API_KEY is not set")}

	p := NewReturnsPipeline(cfg, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.ReturnsRequest{ID: "bitcoin", Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepEnvValidation, resp.Step)
}

func TestReturnsPipelineFetchFailure(t *testing.T) {
	cfg := testConfig(time.Minute)
	history := &fakeHistory{err: fmt.Errorf("provider down")}

	p := NewReturnsPipeline(cfg, history, testStore(cfg), nil, applogger.Nop())
	resp := p.Run(context.Background(), &models.ReturnsRequest{ID: "bitcoin", Range: "3M"})

	assert.False(t, resp.OK)
	assert.Equal(t, StepFetchHistory, resp.Step)
}
