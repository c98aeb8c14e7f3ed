package market

import (
	"context"
	"math"
	"time"

	"stockpulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series  map[string]*model.PriceSeries
	Indexes map[string]*model.IndexQuote
	Errs    map[string]error
	Base    float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, ticker string, lookbackDays int) (*model.PriceSeries, error) {
	if err, ok := m.Errs[ticker]; ok {
		return nil, err
	}
	if s, ok := m.Series[ticker]; ok {
		return s, nil
	}
	base := m.Base
	if base == 0 {
		base = 1000
	}
	// Roughly five trading days per calendar week.
	count := lookbackDays * 5 / 7
	if count < 1 {
		count = 1
	}
	return generateSeries(ticker, base, count), nil
}

func (m *MockFetcher) FetchIndex(_ context.Context, name, symbol string) (*model.IndexQuote, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if q, ok := m.Indexes[symbol]; ok {
		return q, nil
	}
	return &model.IndexQuote{Name: name, Level: 22500.50, ChangePct: 0.42}, nil
}

// generateSeries produces a gently rising series with enough wobble to
// keep the oscillators off their rails.
func generateSeries(ticker string, base float64, count int) *model.PriceSeries {
	bars := make([]model.OHLCV, count)
	start := time.Now().AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := base * (1 + 0.001*float64(i-count/2) + 0.004*math.Sin(float64(i)/3))
		bars[i] = model.OHLCV{
			Date:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return &model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}
}
