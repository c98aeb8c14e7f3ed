package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the raw daily history for one ticker, ascending by date.
// It is owned transiently per report cycle and never cached.
type PriceSeries struct {
	Ticker    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices of the series in order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the volumes of the series in order.
func (s *PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		volumes[i] = b.Volume
	}
	return volumes
}

// IndexQuote is the latest level of a market index.
type IndexQuote struct {
	Name      string
	Level     float64
	ChangePct float64
}

// IndexStatus pairs a configured index with its fetch result.
// Quote is nil when the fetch failed.
type IndexStatus struct {
	Name  string
	Quote *IndexQuote
}
