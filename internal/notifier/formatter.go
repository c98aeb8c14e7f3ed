package notifier

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"stockpulse/internal/model"
)

// MaxMessageLen keeps a safe margin under Telegram's 4096-char limit.
const MaxMessageLen = 4000

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatReport builds the full daily report as a list of Telegram-ready
// Markdown messages, chunked to stay under the size limit.
func FormatReport(now time.Time, indices []model.IndexStatus, reports []model.TickerReport, headlines map[string][]model.Headline) []string {
	parts := []string{formatHeader(now), formatIndexBlock(indices)}
	for _, rep := range reports {
		parts = append(parts, FormatTickerReport(rep))
		parts = append(parts, formatNewsBlock(rep.Ticker, headlines[rep.Ticker]))
	}
	parts = append(parts, formatFooter())
	return Chunk(parts)
}

// FormatTickerReport renders a single ticker outcome, either the full
// signal card or a short error note.
func FormatTickerReport(rep model.TickerReport) string {
	if rep.Status == model.StatusOK && rep.Result != nil {
		return FormatSignal(rep.Result)
	}
	return formatErrorBlock(rep)
}

func formatHeader(now time.Time) string {
	return divider + "\n" +
		"📊 *DAILY STOCK ALERT REPORT*\n" +
		"🗓 _" + now.Format("02 Jan 2006 • 03:04 PM MST") + "_\n" +
		divider
}

func formatIndexBlock(indices []model.IndexStatus) string {
	var b strings.Builder
	b.WriteString("\n📈 *INDEX SUMMARY*\n\n")
	for _, idx := range indices {
		if idx.Quote == nil {
			fmt.Fprintf(&b, "• %s: _data unavailable_\n", idx.Name)
			continue
		}
		emoji, trend := "🟢", "▲"
		if idx.Quote.ChangePct < 0 {
			emoji, trend = "🔴", "▼"
		}
		fmt.Fprintf(&b, "%s *%s*: `%s` %s `%+.2f%%`\n",
			emoji, idx.Name, humanize.CommafWithDigits(idx.Quote.Level, 2), trend, idx.Quote.ChangePct)
	}
	return b.String()
}

// FormatSignal renders one ticker's signal card.
func FormatSignal(res *model.SignalResult) string {
	snap := res.Snapshot
	var b strings.Builder
	b.WriteString("\n──────────────────────────\n")
	fmt.Fprintf(&b, "%s *%s*: %s\n", signalEmoji(res.Signal), res.Ticker, res.Signal)
	fmt.Fprintf(&b, "💰 CMP: `₹%s` (%+.2f%%)\n", humanize.CommafWithDigits(snap.Close, 2), snap.ChangePct)
	pattern := res.Pattern
	if pattern == "" {
		pattern = "No clear pattern"
	}
	fmt.Fprintf(&b, "📐 Pattern: _%s_\n", pattern)

	b.WriteString("\n*Indicators*\n")
	b.WriteString(pill(res.Flags.MACDBullish, "MACD"))
	b.WriteString("  " + pill(snap.Close > snap.EMA20, "EMA20"))
	b.WriteString("  " + pill(snap.Close > snap.EMA50, "EMA50"))
	b.WriteString("  " + pill(res.Flags.VolumeSpike, "Vol↑") + "\n")
	fmt.Fprintf(&b, "📉 RSI: `%.1f` | 📦 Volume: `%.2fx`\n", snap.RSI, snap.VolumeRatio)

	if !res.Levels.IsZero() {
		b.WriteString("\n*Trade Levels*\n")
		fmt.Fprintf(&b, "🎯 Entry:    `%s`\n", formatBand(res.Levels.Entry))
		fmt.Fprintf(&b, "🛑 Stop Loss: `₹%s`\n", humanize.Commaf(res.Levels.StopLoss))
		fmt.Fprintf(&b, "📌 ST Target: `%s`\n", formatBand(res.Levels.STTarget))
		fmt.Fprintf(&b, "🏁 MT Target: `%s`\n", formatBand(res.Levels.MTTarget))
		fmt.Fprintf(&b, "⚖️ R:R Ratio: `%s`", res.Levels.RiskReward)
	}
	for _, note := range res.Notes {
		b.WriteString("\n💬 " + note)
	}
	return b.String()
}

func formatErrorBlock(rep model.TickerReport) string {
	if rep.Status == model.StatusInsufficientData {
		return fmt.Sprintf("\n⚠️ *%s*: insufficient history\n`%s`\n", rep.Ticker, rep.Err)
	}
	return fmt.Sprintf("\n⚠️ *%s*: data error\n`%s`\n", rep.Ticker, rep.Err)
}

func formatNewsBlock(ticker string, items []model.Headline) string {
	if len(items) == 0 {
		return fmt.Sprintf("\n📰 *%s News*: _No recent headlines_\n", ticker)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n📰 *%s News*\n", ticker)
	for _, item := range items {
		title := item.Title
		if utf8.RuneCountInString(title) > 80 {
			title = string([]rune(title)[:80]) + "..."
		}
		fmt.Fprintf(&b, "• [%s](%s)\n", title, item.URL)
	}
	return b.String()
}

func formatFooter() string {
	return "\n" + divider + "\n" +
		"⚠️ _For educational purposes only._\n" +
		"_Not SEBI-registered advice._\n" +
		divider
}

// FormatStatus renders the health snapshot for /status.
func FormatStatus(state model.HealthState) string {
	status := state.LastStatus
	if status == "" {
		status = "Never run"
	}
	lastRun := "Never"
	if !state.LastRun.IsZero() {
		lastRun = state.LastRun.UTC().Format(time.RFC3339)
	}
	var b strings.Builder
	b.WriteString("🤖 *StockPulse Health Status*\n\n")
	fmt.Fprintf(&b, "🟢 Last Status:  `%s`\n", status)
	fmt.Fprintf(&b, "📅 Last Run:     `%s`\n", lastRun)
	fmt.Fprintf(&b, "✅ Successes:    `%d`\n", state.Successes)
	fmt.Fprintf(&b, "❌ Failures:     `%d`\n", state.Failures)
	fmt.Fprintf(&b, "🔄 Total Runs:   `%d`\n", state.TotalRuns)
	if !state.StartTime.IsZero() {
		fmt.Fprintf(&b, "⏱ Running Since: `%s` (%s)\n",
			state.StartTime.UTC().Format(time.RFC3339), humanize.Time(state.StartTime))
	}
	if state.LastError != "" {
		fmt.Fprintf(&b, "⚠️ Last Error:   `%s`\n", state.LastError)
	}
	return b.String()
}

// FormatWatchlist renders the tracked ticker list for /watchlist.
func FormatWatchlist(tickers []string) string {
	var b strings.Builder
	b.WriteString("📋 *Tracked Stocks*\n\n")
	for _, t := range tickers {
		fmt.Fprintf(&b, "• `%s`\n", t)
	}
	return b.String()
}

// FormatWelcome renders the /start and /help greeting.
func FormatWelcome(schedulerOnly bool) string {
	mode := "Full Polling"
	if schedulerOnly {
		mode = "Scheduler-Only"
	}
	return "👋 *StockPulse is live!*\n\n" +
		"Commands:\n" +
		"/report - Instant full report\n" +
		"/signal TICKER - Signal for one stock\n" +
		"/watchlist - Show tracked stocks\n" +
		"/status - Bot health status\n" +
		"/switch - Toggle polling/scheduler mode\n" +
		"/help - This message\n\n" +
		"🔄 Current mode: *" + mode + "*"
}

// FormatCycleError is the notice sent when a report cycle fails outright.
func FormatCycleError(err error) string {
	return fmt.Sprintf("⚠️ *StockPulse Error*\n`%v`\nCheck server logs.", err)
}

// Chunk combines parts into messages no longer than MaxMessageLen.
func Chunk(parts []string) []string {
	var messages []string
	var current string
	for _, part := range parts {
		switch {
		case len(current)+len(part)+1 > MaxMessageLen:
			if current != "" {
				messages = append(messages, strings.TrimSpace(current))
			}
			current = part
		case current == "":
			current = part
		default:
			current += "\n" + part
		}
	}
	if strings.TrimSpace(current) != "" {
		messages = append(messages, strings.TrimSpace(current))
	}
	if len(messages) == 0 {
		return []string{"No data to display."}
	}
	return messages
}

func pill(flag bool, label string) string {
	if flag {
		return "✅ " + label
	}
	return "❌ " + label
}

func formatBand(b model.PriceBand) string {
	if b.High == 0 || b.High == b.Low {
		return "₹" + humanize.Commaf(b.Low)
	}
	return fmt.Sprintf("₹%s-%s", humanize.Commaf(b.Low), humanize.Commaf(b.High))
}

func signalEmoji(s model.Signal) string {
	switch s {
	case model.SignalStrongBuy, model.SignalBuy:
		return "🟢"
	case model.SignalHold:
		return "🟡"
	case model.SignalSell:
		return "⚪"
	default:
		return "🔴"
	}
}
