package calculator

import (
	"errors"
	"math"
)

// EMASeries computes the exponential moving average at every index of the
// input. Entries before the first full period are NaN; the value at index
// period-1 is seeded with the simple average of the first `period` values,
// then ema = (value-prev)*k + prev with k = 2/(period+1).
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) < period {
		return nil, errors.New("not enough data for EMA calculation")
	}

	out := make([]float64, len(values))
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*k + out[i-1]
	}
	return out, nil
}

// EMA returns the exponential moving average at the latest index.
func EMA(values []float64, period int) (float64, error) {
	series, err := EMASeries(values, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// MACD computes the Moving Average Convergence Divergence at the latest
// index: line = fast EMA - slow EMA, signal = EMA of the line, histogram =
// line - signal. Requires at least slow+signal closes.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, 0, errors.New("periods must be positive")
	}
	if fast >= slow {
		return 0, 0, 0, errors.New("fast period must be shorter than slow period")
	}
	if len(closes) < slow+signal {
		return 0, 0, 0, errors.New("not enough data for MACD calculation")
	}

	fastSeries, err := EMASeries(closes, fast)
	if err != nil {
		return 0, 0, 0, err
	}
	slowSeries, err := EMASeries(closes, slow)
	if err != nil {
		return 0, 0, 0, err
	}

	// The line is only defined where the slow EMA is.
	macdLine := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fastSeries[i]-slowSeries[i])
	}

	signalSeries, err := EMASeries(macdLine, signal)
	if err != nil {
		return 0, 0, 0, err
	}

	line = macdLine[len(macdLine)-1]
	sig = signalSeries[len(signalSeries)-1]
	return line, sig, line - sig, nil
}
