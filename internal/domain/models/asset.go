package models

import "time"

// PricePoint is one raw sample from an upstream provider.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// AssetSeries is the normalized price history for one asset, ordered by
// timestamp ascending after ingress normalization.
type AssetSeries struct {
	ID     string
	Symbol string
	Points []PricePoint
}

// AssetSizing captures one asset's sizing metrics at snapshot time.
type AssetSizing struct {
	ID        string
	Symbol    string
	MarketCap float64 // 0 means unknown; excluded from weighting
	LastPrice float64
	Volume24h float64
}

// SizingSnapshot maps asset ID to its sizing capture for one pipeline run.
type SizingSnapshot map[string]AssetSizing

// WeightAssignment maps asset ID to its bounded share of the composite.
type WeightAssignment map[string]float64

// AlignedPoint is one calendar day of the shared timeline. Prices holds the
// assets with a usable sample that day; absent assets are missing keys,
// never zero.
type AlignedPoint struct {
	Day    time.Time
	Prices map[string]float64
}

// IndexPoint is one day of a computed series.
type IndexPoint struct {
	Day   time.Time
	Value float64
}
