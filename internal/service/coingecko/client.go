package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"IndexForge/internal/domain/models"
	"IndexForge/internal/service/fetch"
	"IndexForge/pkg/config"
	xhttp "IndexForge/pkg/http"
)

const sourceName = "coingecko"

// Client pulls crypto sizing snapshots and daily price history from a
// CoinGecko-style API.
type Client struct {
	baseURL  string
	apiKey   string
	currency string
	symbols  map[string]string // asset ID → display symbol
	fetcher  *fetch.Client
}

// New creates a CoinGecko client. The configured basket supplies the
// ID-to-symbol mapping used when the provider omits one.
func New(cfg *config.Config, fetcher *fetch.Client) *Client {
	symbols := make(map[string]string, len(cfg.Index.Assets))
	for _, a := range cfg.Index.Assets {
		symbols[a.ID] = a.Symbol
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.CoinGecko.BaseURL, "/"),
		apiKey:   cfg.CoinGecko.APIKey,
		currency: cfg.CoinGecko.Currency,
		symbols:  symbols,
		fetcher:  fetcher,
	}
}

// Source returns the provider label.
func (c *Client) Source() string { return sourceName }

// Ready reports whether the provider credentials are present.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return fmt.Errorf("COINGECKO_API_KEY is not set")
	}
	return nil
}

// marketRow is the raw /coins/markets shape.
type marketRow struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
	TotalVolume  float64 `json:"total_volume"`
}

// FetchSizing captures market caps, prices and volumes for the given IDs.
// Assets the provider does not return stay absent from the snapshot.
func (c *Client) FetchSizing(ctx context.Context, ids []string) (models.SizingSnapshot, error) {
	payload, err := c.fetcher.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/coins/markets",
		Headers: c.headers(),
		QueryParams: map[string]string{
			"vs_currency": c.currency,
			"ids":         strings.Join(ids, ","),
			"per_page":    strconv.Itoa(len(ids)),
			"page":        "1",
		},
	})
	if err != nil {
		return nil, err
	}

	var rows []marketRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decode markets payload: %w", err)
	}

	snapshot := make(models.SizingSnapshot, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		snapshot[row.ID] = models.AssetSizing{
			ID:        row.ID,
			Symbol:    c.symbolFor(row.ID, row.Symbol),
			MarketCap: nonNegative(row.MarketCap),
			LastPrice: nonNegative(row.CurrentPrice),
			Volume24h: nonNegative(row.TotalVolume),
		}
	}
	return snapshot, nil
}

// chartPayload is the raw /coins/{id}/market_chart shape: rows of
// [unix milliseconds, value].
type chartPayload struct {
	Prices [][]float64 `json:"prices"`
}

// FetchHistory pulls the daily price series for one asset. Samples with
// non-finite or non-positive prices are dropped and the rest are ordered by
// timestamp, so downstream stages can assume a clean series.
func (c *Client) FetchHistory(ctx context.Context, key string, days int) (*models.AssetSeries, error) {
	payload, err := c.fetcher.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, key),
		Headers: c.headers(),
		QueryParams: map[string]string{
			"vs_currency": c.currency,
			"days":        strconv.Itoa(days),
			"interval":    "daily",
		},
	})
	if err != nil {
		return nil, err
	}

	var chart chartPayload
	if err := json.Unmarshal(payload, &chart); err != nil {
		return nil, fmt.Errorf("decode chart payload: %w", err)
	}

	points := make([]models.PricePoint, 0, len(chart.Prices))
	for _, row := range chart.Prices {
		if len(row) < 2 {
			continue
		}
		price := row[1]
		if !isUsablePrice(price) {
			continue
		}
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Price:     price,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return &models.AssetSeries{
		ID:     key,
		Symbol: c.symbolFor(key, ""),
		Points: points,
	}, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

func (c *Client) symbolFor(id, fromProvider string) string {
	if s, ok := c.symbols[id]; ok {
		return s
	}
	if fromProvider != "" {
		return strings.ToUpper(fromProvider)
	}
	return strings.ToUpper(id)
}

func isUsablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
