package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"stockpulse/internal/config"
	"stockpulse/internal/model"
	"stockpulse/internal/notifier"
)

// Reporter runs report cycles and single-ticker evaluations.
type Reporter interface {
	RunCycle(ctx context.Context, trigger string) error
	EvaluateTicker(ctx context.Context, ticker string) model.TickerReport
}

// HealthReader exposes the bot's run history.
type HealthReader interface {
	Snapshot() model.HealthState
}

// Bot wires Telegram command handlers to the report runner.
type Bot struct {
	cfg    *config.Config
	tb     *tele.Bot
	runner Reporter
	health HealthReader
}

// New creates the Telegram client and registers all command handlers.
// The report runner depends on this client for delivery, so it is
// attached afterwards with BindReporter.
func New(cfg *config.Config, health HealthReader) (*Bot, error) {
	pref := tele.Settings{
		Token:     cfg.Telegram.BotToken,
		Poller:    &tele.LongPoller{Timeout: 10 * time.Second},
		ParseMode: tele.ModeMarkdown,
	}
	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b := &Bot{cfg: cfg, tb: tb, health: health}
	b.register()
	return b, nil
}

// BindReporter attaches the report runner. Must be called before Start.
func (b *Bot) BindReporter(rep Reporter) { b.runner = rep }

// Telebot exposes the underlying client so the notifier can reuse it
// for broadcast delivery.
func (b *Bot) Telebot() *tele.Bot { return b.tb }

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start() {
	log.Println("[INFO] telegram bot polling")
	b.tb.Start()
}

// Stop ends long polling.
func (b *Bot) Stop() {
	b.tb.Stop()
	log.Println("[INFO] telegram bot stopped")
}

func (b *Bot) register() {
	b.tb.Handle("/start", b.handleHelp)
	b.tb.Handle("/help", b.handleHelp)
	b.tb.Handle("/report", b.handleReport)
	b.tb.Handle("/signal", b.handleSignal)
	b.tb.Handle("/watchlist", b.handleWatchlist)
	b.tb.Handle("/status", b.handleStatus)
	b.tb.Handle("/switch", b.handleSwitch)
	b.tb.Handle(tele.OnText, b.handleText)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(notifier.FormatWelcome(b.cfg.Schedule.SchedulerOnly))
}

// handleReport runs a full cycle on demand. The report itself goes to
// the configured alert chat through the runner's sender; cycle failures
// already produce an error notice, so they are only logged here.
func (b *Bot) handleReport(c tele.Context) error {
	if err := c.Send("⏳ Fetching data, please wait..."); err != nil {
		return err
	}
	if err := b.runner.RunCycle(context.Background(), "command"); err != nil {
		log.Printf("[ERROR] /report: %v", err)
	}
	return nil
}

func (b *Bot) handleSignal(c tele.Context) error {
	ticker := firstArg(c.Args())
	if ticker == "" {
		return c.Send("Usage: /signal NATCOPHARM")
	}
	rep := b.runner.EvaluateTicker(context.Background(), ticker)
	return c.Send(notifier.FormatTickerReport(rep))
}

func (b *Bot) handleWatchlist(c tele.Context) error {
	return c.Send(notifier.FormatWatchlist(b.cfg.Watchlist))
}

func (b *Bot) handleStatus(c tele.Context) error {
	return c.Send(notifier.FormatStatus(b.health.Snapshot()))
}

// handleSwitch toggles the startup mode for the next restart. Only the
// configured alert chat may use it.
func (b *Bot) handleSwitch(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.ID != b.cfg.Telegram.ChatID {
		return c.Send("❌ Admin only command")
	}
	reply, env := switchReply(b.cfg.Schedule.SchedulerOnly, c.Message().Payload)
	if env != "" {
		os.Setenv("BOT_SCHEDULER_ONLY", env)
	}
	return c.Send(reply)
}

func (b *Bot) handleText(c tele.Context) error {
	if strings.HasPrefix(strings.TrimSpace(c.Text()), "/") {
		return c.Send("Unknown command. Try /help")
	}
	return nil
}

// firstArg extracts the first command argument as an uppercase symbol.
func firstArg(args []string) string {
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			return strings.ToUpper(arg)
		}
	}
	return ""
}

// switchReply resolves a /switch request into the reply text and the
// BOT_SCHEDULER_ONLY value to persist ("" when nothing changes).
func switchReply(schedulerOnly bool, mode string) (reply, env string) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
		current := "Full Polling"
		if schedulerOnly {
			current = "Scheduler-Only"
		}
		return "🔄 Current mode: *" + current + "*\n\nUsage: `/switch polling` or `/switch scheduler`", ""
	case "polling":
		return "🔄 Switching to *Full Polling Mode*\n⚠️ Restart required to apply", "0"
	case "scheduler":
		return "🔄 Switching to *Scheduler-Only Mode*\n⚠️ Restart required to apply", "1"
	default:
		return "❌ Invalid mode. Use: `/switch polling` or `/switch scheduler`", ""
	}
}
