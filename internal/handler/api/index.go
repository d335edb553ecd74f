package api

import (
	"IndexForge/internal/domain/models"
	"IndexForge/internal/service/ratelimit"
	"IndexForge/internal/usecase"
	"IndexForge/pkg/cache"
	"IndexForge/pkg/config"
	xhttp "IndexForge/pkg/http"
	applogger "IndexForge/pkg/logger"
	"IndexForge/pkg/util"

	"github.com/labstack/echo/v4"
)

// Bounds on the compare endpoint's explicit ticker list.
const (
	compareMinSymbols = 2
	compareMaxSymbols = 10
)

// IndexHandler exposes the index, returns and compare pipelines over HTTP.
// Pipeline failures are delivered inside 200-status payloads; only malformed
// requests and throttling use transport-level statuses.
type IndexHandler struct {
	cfg     *config.Config
	log     *applogger.Logger
	index   *usecase.IndexPipeline
	returns *usecase.ReturnsPipeline
	compare *usecase.ComparePipeline
	store   cache.Store
	rl      *ratelimit.Limiter
}

// NewIndexHandler creates the API handler.
func NewIndexHandler(
	cfg *config.Config,
	log *applogger.Logger,
	index *usecase.IndexPipeline,
	returns *usecase.ReturnsPipeline,
	compare *usecase.ComparePipeline,
	store cache.Store,
) *IndexHandler {
	return &IndexHandler{
		cfg:     cfg,
		log:     log,
		index:   index,
		returns: returns,
		compare: compare,
		store:   store,
		rl:      ratelimit.New(),
	}
}

// RegisterRoutes wires the handler into Echo.
func (h *IndexHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/index", h.Index)
	g.GET("/returns", h.Returns)
	g.GET("/compare", h.Compare)
}

// Index serves the weighted composite index series.
func (h *IndexHandler) Index(c echo.Context) error {
	req := &models.IndexRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":index", 5, 2) {
		h.logThrottle("index", c.RealIP())
		return xhttp.TooManyRequestsResponse(c)
	}

	return xhttp.SuccessResponse(c, h.index.Run(c.Request().Context(), req))
}

// Returns serves the percent-return series for one asset.
func (h *IndexHandler) Returns(c echo.Context) error {
	req := &models.ReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":returns", 5, 2) {
		h.logThrottle("returns", c.RealIP())
		return xhttp.TooManyRequestsResponse(c)
	}

	return xhttp.SuccessResponse(c, h.returns.Run(c.Request().Context(), req))
}

// Compare serves aligned percent-return series for a set of tickers. An
// explicit list must name between 2 and 10 tickers; an empty list falls back
// to the configured watchlist.
func (h *IndexHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if n := len(util.SplitList(req.Symbols)); req.Symbols != "" && (n < compareMinSymbols || n > compareMaxSymbols) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_SYMBOL_COUNT",
			Field:   "symbols",
			Message: "symbols must list between 2 and 10 tickers",
		}})
	}
	if !h.rl.Allow(c.RealIP()+":compare", 3, 1) {
		h.logThrottle("compare", c.RealIP())
		return xhttp.TooManyRequestsResponse(c)
	}

	return xhttp.SuccessResponse(c, h.compare.Run(c.Request().Context(), req))
}

// Health is the liveness probe.
func (h *IndexHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, &models.HealthResponse{
		OK:           true,
		Environment:  h.cfg.Environment,
		CacheEntries: h.store.Len(c.Request().Context()),
	})
}

func (h *IndexHandler) logThrottle(endpoint, remote string) {
	if h.log != nil {
		h.log.Warn("request throttled",
			applogger.String("endpoint", endpoint),
			applogger.String("remote", remote),
		)
	}
}
