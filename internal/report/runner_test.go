package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/market"
	"stockpulse/internal/model"
	"stockpulse/internal/recorder"
	"stockpulse/internal/strategy"
)

type stubSender struct {
	batches  [][]string
	failures int
}

func (s *stubSender) Broadcast(_ context.Context, messages []string) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("telegram unreachable")
	}
	s.batches = append(s.batches, messages)
	return nil
}

type stubHealth struct {
	successes   int
	failures    int
	lastSkipped int
	lastError   string
}

func (s *stubHealth) RecordSuccess(skipped int) {
	s.successes++
	s.lastSkipped = skipped
}

func (s *stubHealth) RecordFailure(errText string) {
	s.failures++
	s.lastError = errText
}

type stubRecorder struct {
	runs    []*recorder.RunRecord
	signals []*model.SignalResult
}

func (s *stubRecorder) RecordRun(r *recorder.RunRecord) error {
	s.runs = append(s.runs, r)
	return nil
}

func (s *stubRecorder) RecordSignal(r *model.SignalResult) error {
	s.signals = append(s.signals, r)
	return nil
}

func (s *stubRecorder) Close() error { return nil }

type stubNews struct {
	headlines map[string][]model.Headline
}

func (s *stubNews) Headlines(_ context.Context, _ []string) map[string][]model.Headline {
	return s.headlines
}

type runnerFixture struct {
	runner *Runner
	sender *stubSender
	health *stubHealth
	rec    *stubRecorder
}

func newFixture(cfg *config.Config, fetcher market.Fetcher) *runnerFixture {
	f := &runnerFixture{
		sender: &stubSender{},
		health: &stubHealth{},
		rec:    &stubRecorder{},
	}
	engine := strategy.NewEngine(cfg.Indicators, cfg.Pattern, cfg.LevelsTable())
	f.runner = NewRunner(cfg, fetcher, engine, &stubNews{}, f.sender, f.health, f.rec)
	return f
}

func testRunnerConfig() *config.Config {
	cfg := config.Default()
	cfg.Telegram.BotToken = "test-token"
	cfg.Telegram.ChatID = 42
	return cfg
}

func shortSeries(ticker string, n int) *model.PriceSeries {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{
			Date:   start.AddDate(0, 0, i),
			Open:   100,
			High:   105,
			Low:    95,
			Close:  100 + float64(i),
			Volume: 50000,
		}
	}
	return &model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}
}

func TestRunCycle_SkipsFailedTickers(t *testing.T) {
	cfg := testRunnerConfig()
	fetcher := &market.MockFetcher{Errs: map[string]error{
		"TCS": &market.AdapterError{
			Provider: "mock",
			Op:       "fetch bars for TCS",
			Err:      context.DeadlineExceeded,
			Timeout:  true,
		},
	}}
	f := newFixture(cfg, fetcher)

	if err := f.runner.RunCycle(context.Background(), "schedule"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.health.successes != 1 || f.health.failures != 0 {
		t.Errorf("expected one success, got %d successes and %d failures",
			f.health.successes, f.health.failures)
	}
	if f.health.lastSkipped != 1 {
		t.Errorf("expected 1 skipped ticker, got %d", f.health.lastSkipped)
	}

	if len(f.rec.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(f.rec.runs))
	}
	run := f.rec.runs[0]
	if run.Trigger != "schedule" || run.Status != "success" {
		t.Errorf("unexpected run record %+v", run)
	}
	if run.Evaluated != 4 || run.Skipped != 1 {
		t.Errorf("expected 4 evaluated and 1 skipped, got %d and %d", run.Evaluated, run.Skipped)
	}
	if len(f.rec.signals) != 4 {
		t.Errorf("expected 4 recorded signals, got %d", len(f.rec.signals))
	}

	if len(f.sender.batches) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(f.sender.batches))
	}
	text := strings.Join(f.sender.batches[0], "\n")
	if !strings.Contains(text, "*TCS*: data error") {
		t.Error("expected the failed ticker to appear as a data error")
	}
	for _, ticker := range []string{"RELIANCE", "HDFCBANK", "INFY", "ICICIBANK"} {
		if !strings.Contains(text, "*"+ticker+"*") {
			t.Errorf("expected a signal card for %s", ticker)
		}
	}
	if !strings.Contains(text, "NIFTY 50") {
		t.Error("expected the index block in the report")
	}
}

func TestRunCycle_DeliveryFailure(t *testing.T) {
	cfg := testRunnerConfig()
	f := newFixture(cfg, &market.MockFetcher{})
	f.sender.failures = 1

	err := f.runner.RunCycle(context.Background(), "command")
	if err == nil {
		t.Fatal("expected an error when delivery fails")
	}
	if f.health.failures != 1 || f.health.successes != 0 {
		t.Errorf("expected one failure, got %d failures and %d successes",
			f.health.failures, f.health.successes)
	}
	if f.health.lastError == "" {
		t.Error("expected the failure reason to be recorded")
	}
	if len(f.rec.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(f.rec.runs))
	}
	if f.rec.runs[0].Status != "failure" || f.rec.runs[0].Trigger != "command" {
		t.Errorf("unexpected run record %+v", f.rec.runs[0])
	}

	// The report broadcast failed once; the follow-up error notice
	// should have gone through.
	if len(f.sender.batches) != 1 {
		t.Fatalf("expected the error notice to be delivered, got %d broadcasts", len(f.sender.batches))
	}
	if !strings.Contains(f.sender.batches[0][0], "StockPulse Error") {
		t.Errorf("unexpected error notice %q", f.sender.batches[0][0])
	}
}

func TestEvaluateTicker_InsufficientHistory(t *testing.T) {
	cfg := testRunnerConfig()
	fetcher := &market.MockFetcher{Series: map[string]*model.PriceSeries{
		"RELIANCE": shortSeries("RELIANCE", 10),
	}}
	f := newFixture(cfg, fetcher)

	rep := f.runner.EvaluateTicker(context.Background(), "RELIANCE")
	if rep.Status != model.StatusInsufficientData {
		t.Fatalf("expected insufficient-data status, got %q", rep.Status)
	}
	if rep.Result != nil {
		t.Error("expected no result for a short series")
	}
	if rep.Err == "" {
		t.Error("expected the reason to be carried on the report")
	}
	if len(f.rec.signals) != 0 {
		t.Errorf("expected no recorded signals, got %d", len(f.rec.signals))
	}
}

func TestEvaluateTicker_FetchError(t *testing.T) {
	cfg := testRunnerConfig()
	fetcher := &market.MockFetcher{Errs: map[string]error{
		"INFY": errors.New("connection reset"),
	}}
	f := newFixture(cfg, fetcher)

	rep := f.runner.EvaluateTicker(context.Background(), "INFY")
	if rep.Status != model.StatusError {
		t.Fatalf("expected error status, got %q", rep.Status)
	}
	if !strings.Contains(rep.Err, "connection reset") {
		t.Errorf("expected the fetch error to be carried, got %q", rep.Err)
	}
}
