package calculator

import (
	"math"

	"stockpulse/internal/model"
)

// PatternParams tune the coarse chart-pattern heuristic. The tolerances are
// tuning parameters, not invariants; every label is best-effort.
type PatternParams struct {
	Window       int     // trailing bars scanned
	PivotSpan    int     // bars on each side a pivot must dominate
	TolerancePct float64 // max distance between matching pivot prices, percent
	BreakoutPct  float64 // min close above the prior window high, percent
}

// Pattern labels produced by DetectPattern.
const (
	PatternDoubleBottom = "Double Bottom"
	PatternDoubleTop    = "Double Top"
	PatternBreakout     = "Breakout"
)

type pivot struct {
	index int
	price float64
}

// DetectPattern scans the trailing window of bars for a coarse chart
// pattern and returns its label, or "" when nothing matches. Checks run in
// a fixed order: double bottom, double top, breakout.
func DetectPattern(bars []model.OHLCV, p PatternParams) string {
	if p.Window <= 0 || p.PivotSpan <= 0 {
		return ""
	}
	if len(bars) < 2*p.PivotSpan+2 {
		return ""
	}
	window := bars
	if len(window) > p.Window {
		window = window[len(window)-p.Window:]
	}

	if lows := pivotLows(window, p.PivotSpan); pairWithinTolerance(lows, p.PivotSpan, p.TolerancePct) {
		return PatternDoubleBottom
	}
	if highs := pivotHighs(window, p.PivotSpan); pairWithinTolerance(highs, p.PivotSpan, p.TolerancePct) {
		return PatternDoubleTop
	}
	if isBreakout(window, p.BreakoutPct) {
		return PatternBreakout
	}
	return ""
}

// pivotLows returns bars whose low is the minimum within pivot span bars on
// each side.
func pivotLows(bars []model.OHLCV, span int) []pivot {
	var out []pivot
	for i := span; i < len(bars)-span; i++ {
		isPivot := true
		for j := i - span; j <= i+span; j++ {
			if bars[j].Low < bars[i].Low {
				isPivot = false
				break
			}
		}
		if isPivot {
			out = append(out, pivot{index: i, price: bars[i].Low})
		}
	}
	return out
}

// pivotHighs returns bars whose high is the maximum within pivot span bars
// on each side.
func pivotHighs(bars []model.OHLCV, span int) []pivot {
	var out []pivot
	for i := span; i < len(bars)-span; i++ {
		isPivot := true
		for j := i - span; j <= i+span; j++ {
			if bars[j].High > bars[i].High {
				isPivot = false
				break
			}
		}
		if isPivot {
			out = append(out, pivot{index: i, price: bars[i].High})
		}
	}
	return out
}

// pairWithinTolerance reports whether two pivots from distinct swings
// (separated by more than span bars) sit within tolerance of each other.
func pairWithinTolerance(pivots []pivot, span int, tolerancePct float64) bool {
	for i := 0; i < len(pivots); i++ {
		for j := i + 1; j < len(pivots); j++ {
			if pivots[j].index-pivots[i].index <= span {
				continue
			}
			if pivots[i].price <= 0 {
				continue
			}
			diff := math.Abs(pivots[j].price-pivots[i].price) / pivots[i].price * 100.0
			if diff <= tolerancePct {
				return true
			}
		}
	}
	return false
}

// isBreakout reports whether the latest close clears the highest high of
// all earlier bars in the window by the breakout margin.
func isBreakout(bars []model.OHLCV, breakoutPct float64) bool {
	if len(bars) < 2 {
		return false
	}
	priorHigh := math.Inf(-1)
	for _, b := range bars[:len(bars)-1] {
		if b.High > priorHigh {
			priorHigh = b.High
		}
	}
	if priorHigh <= 0 {
		return false
	}
	last := bars[len(bars)-1].Close
	return last >= priorHigh*(1.0+breakoutPct/100.0)
}
