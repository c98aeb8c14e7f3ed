// Command reportonce builds and sends the daily report once, then
// exits. Use it from cron or a CI schedule instead of running the bot
// around the clock; no Telegram commands are served.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	tele "gopkg.in/telebot.v3"

	"stockpulse/internal/config"
	"stockpulse/internal/health"
	"stockpulse/internal/market"
	"stockpulse/internal/news"
	"stockpulse/internal/notifier"
	"stockpulse/internal/recorder"
	"stockpulse/internal/report"
	"stockpulse/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Println("[INFO] report sent, exiting")
}

func run() error {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	timeout := time.Duration(cfg.Market.TimeoutSeconds) * time.Second
	fetcher := market.New(cfg.Market.Provider, cfg.Market.BaseURL, timeout)
	log.Printf("[INFO] market data source: %s", fetcher.Name())

	engine := strategy.NewEngine(cfg.Indicators, cfg.Pattern, cfg.LevelsTable())
	headlines := news.NewFetcher(cfg.News)

	tracker, err := health.NewTracker(cfg.Health.StateFile)
	if err != nil {
		return fmt.Errorf("init health tracker: %w", err)
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// No poller: this process only sends.
	tb, err := tele.NewBot(tele.Settings{
		Token:     cfg.Telegram.BotToken,
		ParseMode: tele.ModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}
	sender := notifier.NewNotifier(tb, cfg.Telegram.ChatID)

	runner := report.NewRunner(cfg, fetcher, engine, headlines, sender, tracker, rec)

	// Upper bound for one full cycle including delivery retries.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return runner.RunCycle(ctx, "startup")
}
