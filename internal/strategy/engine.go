package strategy

import (
	"errors"
	"fmt"

	"stockpulse/internal/calculator"
	"stockpulse/internal/config"
	"stockpulse/internal/model"
)

// Sentinel conditions surfaced by Evaluate. Callers classify them with
// errors.Is.
var (
	// ErrInsufficientData marks a series too short for the longest
	// indicator window. Reported as "no signal", not counted as a failure.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataIntegrity marks malformed bars; the ticker is skipped for the
	// cycle.
	ErrDataIntegrity = errors.New("data integrity")
)

// Engine derives the trade signal for one ticker from its price series.
// It holds only configuration and is stateless across evaluations.
type Engine struct {
	indicators config.IndicatorConfig
	pattern    calculator.PatternParams
	levels     map[string]model.TradeLevels
}

// NewEngine builds an engine from validated configuration and the static
// trade-levels table.
func NewEngine(ind config.IndicatorConfig, pat config.PatternConfig, levels map[string]model.TradeLevels) *Engine {
	return &Engine{
		indicators: ind,
		pattern: calculator.PatternParams{
			Window:       pat.Window,
			PivotSpan:    pat.PivotSpan,
			TolerancePct: pat.TolerancePct,
			BreakoutPct:  pat.BreakoutPct,
		},
		levels: levels,
	}
}

// MinBars is the shortest series Evaluate accepts.
func (e *Engine) MinBars() int {
	return e.indicators.MinBars()
}

// Evaluate validates the series, computes the indicator snapshot and maps
// the bullish flags to a signal through the priority table. Trade levels
// come from the static table; a ticker without an entry gets zero levels.
func (e *Engine) Evaluate(series *model.PriceSeries) (*model.SignalResult, error) {
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	if minBars := e.indicators.MinBars(); len(series.Bars) < minBars {
		return nil, fmt.Errorf("%w: %s has %d bars, need %d",
			ErrInsufficientData, series.Ticker, len(series.Bars), minBars)
	}

	closes := series.Closes()
	volumes := series.Volumes()
	snap := model.IndicatorSnapshot{Close: closes[len(closes)-1]}

	var err error
	if snap.ChangePct, err = calculator.ChangePct(closes); err != nil {
		return nil, fmt.Errorf("%w: change: %v", ErrInsufficientData, err)
	}
	if snap.RSI, err = calculator.RSI(closes, e.indicators.RSIPeriod); err != nil {
		return nil, fmt.Errorf("%w: rsi: %v", ErrInsufficientData, err)
	}
	if snap.EMA20, err = calculator.EMA(closes, e.indicators.EMAShort); err != nil {
		return nil, fmt.Errorf("%w: ema%d: %v", ErrInsufficientData, e.indicators.EMAShort, err)
	}
	if snap.EMA50, err = calculator.EMA(closes, e.indicators.EMALong); err != nil {
		return nil, fmt.Errorf("%w: ema%d: %v", ErrInsufficientData, e.indicators.EMALong, err)
	}
	snap.MACD, snap.MACDSignal, snap.MACDHist, err = calculator.MACD(
		closes, e.indicators.MACDFast, e.indicators.MACDSlow, e.indicators.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("%w: macd: %v", ErrInsufficientData, err)
	}
	// A dead trailing volume leaves the ratio at zero and the spike unset.
	if ratio, err := calculator.VolumeRatio(volumes, e.indicators.VolumeWindow); err == nil {
		snap.VolumeRatio = ratio
	}

	flags := computeFlags(snap, e.indicators)
	signal := mapSignal(flags.Count())
	// Overbought cap: an extended RSI demotes anything stronger than HOLD.
	if snap.RSI >= e.indicators.RSIOverbought && signal.Rank() > model.SignalHold.Rank() {
		signal = model.SignalHold
	}

	return &model.SignalResult{
		Ticker:    series.Ticker,
		Signal:    signal,
		Pattern:   calculator.DetectPattern(series.Bars, e.pattern),
		Snapshot:  snap,
		Flags:     flags,
		Levels:    e.levels[series.Ticker],
		Rationale: rationale(flags),
		Notes:     buildNotes(snap, flags, e.indicators),
	}, nil
}

// validateSeries rejects empty input and malformed bars before any
// indicator math runs.
func validateSeries(series *model.PriceSeries) error {
	if series == nil || len(series.Bars) == 0 {
		return fmt.Errorf("%w: empty series", ErrInsufficientData)
	}
	for i, bar := range series.Bars {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return fmt.Errorf("%w: %s bar %d has a non-positive price",
				ErrDataIntegrity, series.Ticker, i)
		}
		if bar.Volume < 0 {
			return fmt.Errorf("%w: %s bar %d has negative volume",
				ErrDataIntegrity, series.Ticker, i)
		}
		if i > 0 && !bar.Date.After(series.Bars[i-1].Date) {
			return fmt.Errorf("%w: %s dates not strictly ascending at bar %d",
				ErrDataIntegrity, series.Ticker, i)
		}
	}
	return nil
}
