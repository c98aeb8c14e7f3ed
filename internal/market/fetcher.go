package market

import (
	"context"
	"time"

	"stockpulse/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchSeries returns daily bars for ticker covering roughly the
	// trailing lookbackDays calendar days, oldest bar first.
	FetchSeries(ctx context.Context, ticker string, lookbackDays int) (*model.PriceSeries, error)
	// FetchIndex returns the latest level and day change of a market index.
	FetchIndex(ctx context.Context, name, symbol string) (*model.IndexQuote, error)
	Name() string
}

// New returns the fetcher for a configured provider name.
func New(provider, baseURL string, timeout time.Duration) Fetcher {
	switch provider {
	case "yahoo":
		return NewYahooFetcher(timeout)
	case "mock":
		return &MockFetcher{}
	default:
		return NewNSEFetcher(baseURL, timeout)
	}
}
