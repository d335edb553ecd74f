package models

import "time"

// Provenance status buckets, derived from the age of the data served.
const (
	StatusLive     = "LIVE"
	StatusDegraded = "DEGRADED"
	StatusStale    = "STALE"
)

// Point is one rendered sample of a response series.
type Point struct {
	T string  `json:"t"`
	V float64 `json:"v"`
}

// WeightEntry is one asset's share of the composite plus sizing metadata.
type WeightEntry struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Weight    float64 `json:"weight"`
	MarketCap float64 `json:"marketCap,omitempty"`
	LastPrice float64 `json:"lastPrice,omitempty"`
	Volume24h float64 `json:"volume24h,omitempty"`
}

// LastStats describes the latest value of a series and its day-over-day move.
type LastStats struct {
	V         float64 `json:"v"`
	ChangeAbs float64 `json:"changeAbs"`
	ChangePct float64 `json:"changePct"`
}

// Provenance tells the consumer where served data came from and how old it is.
type Provenance struct {
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IndexResponse is the envelope for the index and returns endpoints. A
// degraded run carries the failure fields with ok=false at HTTP 200.
type IndexResponse struct {
	OK                  bool          `json:"ok"`
	Error               string        `json:"error,omitempty"`
	Step                string        `json:"step,omitempty"`
	Details             string        `json:"details,omitempty"`
	UpstreamStatus      int           `json:"upstreamStatus,omitempty"`
	UpstreamBodyPreview string        `json:"upstreamBodyPreview,omitempty"`
	Points              []Point       `json:"points,omitempty"`
	Weights             []WeightEntry `json:"weights,omitempty"`
	Last                *LastStats    `json:"last,omitempty"`
	Provenance          *Provenance   `json:"provenance,omitempty"`
}

// CompareSeries is one ticker's dense percent-return series. Volatility is
// the sample standard deviation of its day-over-day moves.
type CompareSeries struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Points     []Point    `json:"points"`
	Last       *LastStats `json:"last,omitempty"`
	Volatility float64    `json:"volatility"`
}

// CompareResponse is the envelope for the comparison endpoint.
type CompareResponse struct {
	OK                  bool            `json:"ok"`
	Error               string          `json:"error,omitempty"`
	Step                string          `json:"step,omitempty"`
	Details             string          `json:"details,omitempty"`
	UpstreamStatus      int             `json:"upstreamStatus,omitempty"`
	UpstreamBodyPreview string          `json:"upstreamBodyPreview,omitempty"`
	Series              []CompareSeries `json:"series,omitempty"`
	Provenance          *Provenance     `json:"provenance,omitempty"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	OK           bool   `json:"ok"`
	Environment  string `json:"environment,omitempty"`
	CacheEntries int    `json:"cacheEntries"`
}
