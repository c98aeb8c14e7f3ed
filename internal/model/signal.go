package model

// Signal is the discrete action label derived from the indicator flags.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG SELL"
)

// Rank orders signals from weakest (0, STRONG SELL) to strongest (4, STRONG BUY).
func (s Signal) Rank() int {
	switch s {
	case SignalStrongBuy:
		return 4
	case SignalBuy:
		return 3
	case SignalHold:
		return 2
	case SignalSell:
		return 1
	default:
		return 0
	}
}

// IndicatorSnapshot holds the derived values for the latest bar of a series.
// Computed fresh each run; never persisted as engine state.
type IndicatorSnapshot struct {
	Close       float64
	ChangePct   float64
	RSI         float64
	MACD        float64
	MACDSignal  float64
	MACDHist    float64
	EMA20       float64
	EMA50       float64
	VolumeRatio float64
}

// Flags are the boolean conditions combined by the signal priority table.
type Flags struct {
	MACDBullish bool // MACD line above its signal line
	EMABullish  bool // close above EMA20 and EMA20 above EMA50
	VolumeSpike bool // volume ratio at or above the configured multiplier
	RSIBullish  bool // RSI inside the bullish zone, below overbought
}

// Count returns how many flags are true.
func (f Flags) Count() int {
	n := 0
	for _, v := range []bool{f.MACDBullish, f.EMABullish, f.VolumeSpike, f.RSIBullish} {
		if v {
			n++
		}
	}
	return n
}

// PriceBand is an inclusive price range. Low == High denotes a single level.
type PriceBand struct {
	Low  float64
	High float64
}

// IsZero reports whether the band is unset.
func (b PriceBand) IsZero() bool {
	return b.Low == 0 && b.High == 0
}

// TradeLevels are analyst-maintained static levels for one ticker.
// They come from configuration, never from the price series.
type TradeLevels struct {
	Entry      PriceBand
	StopLoss   float64
	STTarget   PriceBand
	MTTarget   PriceBand
	RiskReward string
}

// IsZero reports whether no levels are set for the ticker.
func (t TradeLevels) IsZero() bool {
	return t.Entry.IsZero() && t.StopLoss == 0 && t.STTarget.IsZero() && t.MTTarget.IsZero()
}

// SignalResult is the engine output for one ticker in one cycle.
type SignalResult struct {
	Ticker    string
	Signal    Signal
	Pattern   string
	Snapshot  IndicatorSnapshot
	Flags     Flags
	Levels    TradeLevels
	Rationale string
	Notes     []string
}

// TickerStatus classifies the per-ticker outcome of a report cycle.
type TickerStatus string

const (
	StatusOK               TickerStatus = "ok"
	StatusInsufficientData TickerStatus = "insufficient-data"
	StatusError            TickerStatus = "error"
)

// TickerReport is the per-ticker cycle outcome handed to the formatter.
// Result is non-nil only when Status is StatusOK.
type TickerReport struct {
	Ticker string
	Status TickerStatus
	Result *SignalResult
	Err    string
}
