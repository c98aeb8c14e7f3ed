package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockpulse/internal/bot"
	"stockpulse/internal/config"
	"stockpulse/internal/health"
	"stockpulse/internal/market"
	"stockpulse/internal/news"
	"stockpulse/internal/notifier"
	"stockpulse/internal/recorder"
	"stockpulse/internal/report"
	"stockpulse/internal/scheduler"
	"stockpulse/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	log.Println("[INFO] StockPulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init market data fetcher
	timeout := time.Duration(cfg.Market.TimeoutSeconds) * time.Second
	fetcher := market.New(cfg.Market.Provider, cfg.Market.BaseURL, timeout)
	log.Printf("[INFO] market data source: %s", fetcher.Name())

	// Init signal engine and news fetcher
	engine := strategy.NewEngine(cfg.Indicators, cfg.Pattern, cfg.LevelsTable())
	headlines := news.NewFetcher(cfg.News)

	// Init health tracker
	tracker, err := health.NewTracker(cfg.Health.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init health tracker: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram bot, then the delivery pipeline on top of its client
	b, err := bot.New(cfg, tracker)
	if err != nil {
		log.Fatalf("[FATAL] init telegram bot: %v", err)
	}
	sender := notifier.NewNotifier(b.Telebot(), cfg.Telegram.ChatID)
	runner := report.NewRunner(cfg, fetcher, engine, headlines, sender, tracker, rec)
	b.BindReporter(runner)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start command polling unless running as a pure scheduler
	if cfg.Schedule.SchedulerOnly {
		log.Println("[INFO] scheduler-only mode: command polling disabled")
	} else {
		go b.Start()
		defer b.Stop()
	}

	// Optional: send a report immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, sending report now")
		go sched.RunNow()
	}

	log.Println("[INFO] StockPulse is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockPulse stopped")
}
