package models

// IndexRequest selects the window and an optional basket override for the
// composite index endpoint.
type IndexRequest struct {
	Range string `query:"range" default:"3M" validate:"oneof=1M 3M 6M 1Y YTD"`
	IDs   string `query:"ids" validate:"omitempty,max=200"`
}

// ReturnsRequest selects the asset and window for the percent-return endpoint.
type ReturnsRequest struct {
	ID    string `query:"id" validate:"required,min=1,max=64"`
	Range string `query:"range" default:"3M" validate:"oneof=1M 3M 6M 1Y YTD"`
}

// CompareRequest selects the tickers and window for the comparison endpoint.
// An empty symbol list falls back to the configured watchlist.
type CompareRequest struct {
	Symbols string `query:"symbols" validate:"omitempty,max=200"`
	Range   string `query:"range" default:"3M" validate:"oneof=1M 3M 6M 1Y YTD"`
}
