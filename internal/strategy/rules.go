package strategy

import (
	"fmt"
	"strings"

	"stockpulse/internal/config"
	"stockpulse/internal/model"
)

// Rules is the ordered signal priority table. The first rule whose
// MinFlags the bullish count satisfies wins, so stronger signals must come
// first.
var Rules = []struct {
	MinFlags int
	Signal   model.Signal
}{
	{4, model.SignalStrongBuy},
	{3, model.SignalBuy},
	{2, model.SignalHold},
	{1, model.SignalSell},
}

// DefaultSignal applies when no rule matches.
var DefaultSignal = model.SignalStrongSell

// mapSignal maps a bullish flag count to its signal label.
func mapSignal(count int) model.Signal {
	for _, r := range Rules {
		if count >= r.MinFlags {
			return r.Signal
		}
	}
	return DefaultSignal
}

// computeFlags derives the boolean conditions the priority table combines.
func computeFlags(snap model.IndicatorSnapshot, cfg config.IndicatorConfig) model.Flags {
	return model.Flags{
		MACDBullish: snap.MACD > snap.MACDSignal,
		EMABullish:  snap.Close > snap.EMA20 && snap.EMA20 > snap.EMA50,
		VolumeSpike: snap.VolumeRatio >= cfg.VolumeSpikeRatio,
		RSIBullish:  snap.RSI >= cfg.RSIBullish && snap.RSI < cfg.RSIOverbought,
	}
}

// rationale summarises which bullish checks passed.
func rationale(f model.Flags) string {
	passed := make([]string, 0, 4)
	if f.MACDBullish {
		passed = append(passed, "MACD")
	}
	if f.EMABullish {
		passed = append(passed, "EMA trend")
	}
	if f.VolumeSpike {
		passed = append(passed, "volume")
	}
	if f.RSIBullish {
		passed = append(passed, "RSI")
	}
	if len(passed) == 0 {
		return "0/4 bullish checks passed"
	}
	return fmt.Sprintf("%d/4 bullish checks: %s", len(passed), strings.Join(passed, ", "))
}

// buildNotes collects the advisory lines shown under a signal block.
func buildNotes(snap model.IndicatorSnapshot, f model.Flags, cfg config.IndicatorConfig) []string {
	var notes []string
	if snap.RSI <= cfg.RSIOversold {
		notes = append(notes, "RSI oversold, potential bounce zone")
	}
	if snap.RSI >= cfg.RSIOverbought {
		notes = append(notes, "RSI overbought, partial profit booking advisable")
	}
	if f.VolumeSpike {
		notes = append(notes, fmt.Sprintf("Volume spike %.2fx avg, institutional activity", snap.VolumeRatio))
	}
	if snap.Close > snap.EMA20 && snap.Close <= snap.EMA50 {
		notes = append(notes, "50 EMA reclaim attempt, key resistance overhead")
	}
	return notes
}
