package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"IndexForge/internal/domain/models"
	"IndexForge/internal/usecase"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	applogger "IndexForge/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider satisfies both source interfaces and always reports missing
// credentials, so requests stop at the env_validation step without any
// network work.
type fakeProvider struct{}

func (fakeProvider) FetchSizing(context.Context, []string) (models.SizingSnapshot, error) {
	return nil, fmt.Errorf("unreachable")
}

func (fakeProvider) FetchHistory(context.Context, string, int) (*models.AssetSeries, error) {
	return nil, fmt.Errorf("unreachable")
}

func (fakeProvider) Source() string { return "fake" }
func (fakeProvider) Ready() error   { return fmt.Errorf("API key is not set") }

func testHandler(t *testing.T) (*IndexHandler, *echo.Echo) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Cache.FreshFor = time.Minute
	cfg.Index.Assets = []config.AssetRef{{ID: "bitcoin", Symbol: "BTC"}}
	cfg.Index.MinWeight = 0.05
	cfg.Index.MaxWeight = 0.5
	cfg.Compare.Symbols = []string{"AAPL", "MSFT"}

	store := cache.NewMemoryStore()
	log := applogger.Nop()
	src := fakeProvider{}

	h := NewIndexHandler(cfg, log,
		usecase.NewIndexPipeline(cfg, src, src, store, nil, log),
		usecase.NewReturnsPipeline(cfg, src, store, nil, log),
		usecase.NewComparePipeline(cfg, src, store, nil, log),
		store,
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doRequest(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexRejectsInvalidRange(t *testing.T) {
	_, e := testHandler(t)

	rec := doRequest(e, "/api/index?range=2W")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
}

func TestIndexPipelineFailureIsSoft(t *testing.T) {
	_, e := testHandler(t)

	rec := doRequest(e, "/api/index?range=1M")
	assert.Equal(t, http.StatusOK, rec.Code, "pipeline failures ride a 200 payload")

	var resp models.IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "env_validation", resp.Step)
}

func TestReturnsRequiresID(t *testing.T) {
	_, e := testHandler(t)

	rec := doRequest(e, "/api/returns?range=1M")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareRejectsSingleSymbol(t *testing.T) {
	_, e := testHandler(t)

	rec := doRequest(e, "/api/compare?symbols=AAPL")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareAcceptsEmptySymbolList(t *testing.T) {
	_, e := testHandler(t)

	// Falls back to the configured watchlist; still degrades at the
	// credentials check, but passes validation.
	rec := doRequest(e, "/api/compare")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "env_validation", resp.Step)
}

func TestIndexThrottlesBurst(t *testing.T) {
	_, e := testHandler(t)

	throttled := false
	for i := 0; i < 8; i++ {
		if doRequest(e, "/api/index").Code == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	assert.True(t, throttled, "burst past the bucket capacity must hit 429")
}

func TestHealth(t *testing.T) {
	_, e := testHandler(t)

	rec := doRequest(e, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "test", resp.Environment)
	assert.Zero(t, resp.CacheEntries)
}
