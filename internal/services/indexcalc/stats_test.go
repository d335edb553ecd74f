package indexcalc

import (
	"math"
	"testing"
	"time"

	"IndexForge/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastChangePriorPoint(t *testing.T) {
	series := []models.IndexPoint{
		{Day: day(1), Value: 95},
		{Day: day(2), Value: 100},
		{Day: day(3), Value: 110},
	}

	stats := LastChangePriorPoint(series)
	require.NotNil(t, stats)
	assert.Equal(t, 110.0, stats.V)
	assert.InDelta(t, 10.0, stats.ChangeAbs, 1e-9)
	assert.InDelta(t, 10.0, stats.ChangePct, 1e-9)
}

func TestLastChangePriorPointSinglePoint(t *testing.T) {
	stats := LastChangePriorPoint([]models.IndexPoint{{Day: day(1), Value: 42}})
	require.NotNil(t, stats)
	assert.Equal(t, 42.0, stats.V)
	assert.Zero(t, stats.ChangeAbs)
	assert.Zero(t, stats.ChangePct)

	assert.Nil(t, LastChangePriorPoint(nil))
}

func TestLastChangeDistinctDaySkipsSameDayDuplicates(t *testing.T) {
	series := []models.IndexPoint{
		{Day: day(1), Value: 100},
		{Day: day(2), Value: 105},
		{Day: time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC), Value: 110},
	}

	stats := LastChangeDistinctDay(series)
	require.NotNil(t, stats)
	assert.Equal(t, 110.0, stats.V)
	assert.InDelta(t, 10.0, stats.ChangeAbs, 1e-9, "reference is the prior calendar day, not the same-day point")
	assert.InDelta(t, 10.0, stats.ChangePct, 1e-9)
}

func TestLastChangeDistinctDayAllSameDay(t *testing.T) {
	series := []models.IndexPoint{
		{Day: day(1), Value: 100},
		{Day: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Value: 103},
	}

	stats := LastChangeDistinctDay(series)
	require.NotNil(t, stats)
	assert.Equal(t, 103.0, stats.V)
	assert.Zero(t, stats.ChangeAbs, "no earlier day to compare against")
}

func TestVolatility(t *testing.T) {
	series := []models.IndexPoint{
		{Day: day(1), Value: 100},
		{Day: day(2), Value: 110},
		{Day: day(3), Value: 105},
		{Day: day(4), Value: 115},
	}

	// moves 10, -5, 10 → sample standard deviation sqrt(75)
	assert.InDelta(t, math.Sqrt(75), Volatility(series), 1e-9)
}

func TestVolatilityShortSeries(t *testing.T) {
	assert.Zero(t, Volatility(nil))
	assert.Zero(t, Volatility([]models.IndexPoint{
		{Day: day(1), Value: 100},
		{Day: day(2), Value: 90},
	}))
}
