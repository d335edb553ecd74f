package alphavantage

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
	"IndexForge/pkg/util"
)

const sourceName = "alphavantage"

// compactWindow is the largest day count served by outputsize=compact.
const compactWindow = 100

// Client pulls equity daily history from an AlphaVantage-style API.
type Client struct {
	baseURL string
	apiKey  string
	fetcher *fetch.Client
}

// New creates an AlphaVantage client.
func New(cfg *config.Config, fetcher *fetch.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.AlphaVantage.BaseURL, "/"),
		apiKey:  cfg.AlphaVantage.APIKey,
		fetcher: fetcher,
	}
}

// Source returns the provider label.
func (c *Client) Source() string { return sourceName }

// Ready reports whether the provider credentials are present.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return fmt.Errorf("ALPHAVANTAGE_API_KEY is not set")
	}
	return nil
}

// dailyPayload is the raw TIME_SERIES_DAILY shape. The provider reports its
// own errors as 200-status objects with one of three message fields.
type dailyPayload struct {
	Note         string               `json:"Note"`
	Information  string               `json:"Information"`
	ErrorMessage string               `json:"Error Message"`
	TimeSeries   map[string]dailyBars `json:"Time Series (Daily)"`
}

type dailyBars struct {
	Close string `json:"4. close"`
}

// FetchHistory pulls the daily close series for one ticker, trimmed to the
// requested day window. Provider error payloads surface as application
// failures so the caller sees them exactly like a non-2xx answer.
func (c *Client) FetchHistory(ctx context.Context, key string, days int) (*models.AssetSeries, error) {
	symbol := strings.ToUpper(key)

	outputSize := "compact"
	if days > compactWindow {
		outputSize = "full"
	}

	payload, err := c.fetcher.Fetch(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/query",
		QueryParams: map[string]string{
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"outputsize": outputSize,
			"apikey":     c.apiKey,
		},
	})
	if err != nil {
		return nil, err
	}

	var daily dailyPayload
	if err := json.Unmarshal(payload, &daily); err != nil {
		return nil, fmt.Errorf("decode daily payload: %w", err)
	}

	if msg := daily.errorText(); msg != "" {
		return nil, &fetch.Error{
			Kind:        fetch.KindApplication,
			Status:      200,
			BodyPreview: util.Truncate(msg, 256),
			Err:         fmt.Errorf("provider error payload for %s", symbol),
		}
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	points := make([]models.PricePoint, 0, len(daily.TimeSeries))
	for date, bars := range daily.TimeSeries {
		ts, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}
		price, err := strconv.ParseFloat(bars.Close, 64)
		if err != nil || !isUsablePrice(price) {
			continue
		}
		points = append(points, models.PricePoint{Timestamp: ts, Price: price})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return &models.AssetSeries{
		ID:     symbol,
		Symbol: symbol,
		Points: points,
	}, nil
}

// errorText returns the provider's in-payload error, if any. A payload with
// no time series and no message still counts as an error: the provider
// answered with nothing usable.
func (p *dailyPayload) errorText() string {
	switch {
	case p.ErrorMessage != "":
		return p.ErrorMessage
	case p.Note != "":
		return p.Note
	case p.Information != "":
		return p.Information
	case len(p.TimeSeries) == 0:
		return "empty time series"
	default:
		return ""
	}
}

func isUsablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
