package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"stockpulse/internal/config"
	"stockpulse/internal/market"
	"stockpulse/internal/model"
	"stockpulse/internal/notifier"
	"stockpulse/internal/recorder"
	"stockpulse/internal/strategy"
)

// Sender delivers formatted messages to the alert chat.
type Sender interface {
	Broadcast(ctx context.Context, messages []string) error
}

// HeadlineFetcher supplies per-ticker news for the report.
type HeadlineFetcher interface {
	Headlines(ctx context.Context, tickers []string) map[string][]model.Headline
}

// HealthRecorder tracks cycle outcomes.
type HealthRecorder interface {
	RecordSuccess(skipped int)
	RecordFailure(errText string)
}

// Runner executes report cycles: fetch, evaluate, format, deliver.
// Cycles are serialized; a /report racing the schedule waits its turn.
type Runner struct {
	cfg      *config.Config
	fetcher  market.Fetcher
	engine   *strategy.Engine
	news     HeadlineFetcher
	sender   Sender
	health   HealthRecorder
	recorder recorder.Recorder
	loc      *time.Location

	mu sync.Mutex
}

// NewRunner wires a runner from its collaborators.
func NewRunner(cfg *config.Config, fetcher market.Fetcher, engine *strategy.Engine,
	headlines HeadlineFetcher, sender Sender, health HealthRecorder, rec recorder.Recorder) *Runner {
	return &Runner{
		cfg:      cfg,
		fetcher:  fetcher,
		engine:   engine,
		news:     headlines,
		sender:   sender,
		health:   health,
		recorder: rec,
		loc:      istLocation(),
	}
}

// RunCycle builds and delivers the full report. Individual ticker
// failures are skipped and summarized; only systemic failures such as
// delivery errors fail the cycle.
func (r *Runner) RunCycle(ctx context.Context, trigger string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Printf("[INFO] starting report cycle (%s)", trigger)
	start := time.Now()

	indices := r.fetchIndices(ctx)
	reports, evaluated, skipped := r.evaluateWatchlist(ctx)
	headlines := r.news.Headlines(ctx, r.cfg.Watchlist)

	messages := notifier.FormatReport(time.Now().In(r.loc), indices, reports, headlines)
	if err := r.sender.Broadcast(ctx, messages); err != nil {
		err = fmt.Errorf("deliver report: %w", err)
		r.failCycle(ctx, trigger, err)
		return err
	}

	r.health.RecordSuccess(skipped)
	r.recordRun(trigger, "success", evaluated, skipped, "")
	log.Printf("[INFO] report cycle done in %s (%d evaluated, %d skipped)",
		time.Since(start).Round(time.Millisecond), evaluated, skipped)
	return nil
}

// EvaluateTicker fetches and evaluates a single ticker, classifying the
// outcome instead of failing.
func (r *Runner) EvaluateTicker(ctx context.Context, ticker string) model.TickerReport {
	fctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	series, err := r.fetcher.FetchSeries(fctx, ticker, r.cfg.Market.LookbackDays)
	if err != nil {
		log.Printf("[WARN] fetch failed for %s: %v", ticker, err)
		return model.TickerReport{Ticker: ticker, Status: model.StatusError, Err: err.Error()}
	}

	res, err := r.engine.Evaluate(series)
	switch {
	case errors.Is(err, strategy.ErrInsufficientData):
		log.Printf("[WARN] %s: %v", ticker, err)
		return model.TickerReport{Ticker: ticker, Status: model.StatusInsufficientData, Err: err.Error()}
	case err != nil:
		log.Printf("[WARN] %s: %v", ticker, err)
		return model.TickerReport{Ticker: ticker, Status: model.StatusError, Err: err.Error()}
	}

	if recErr := r.recorder.RecordSignal(res); recErr != nil {
		log.Printf("[WARN] record signal for %s: %v", ticker, recErr)
	}
	return model.TickerReport{Ticker: ticker, Status: model.StatusOK, Result: res}
}

func (r *Runner) evaluateWatchlist(ctx context.Context) (reports []model.TickerReport, evaluated, skipped int) {
	reports = make([]model.TickerReport, 0, len(r.cfg.Watchlist))
	for _, ticker := range r.cfg.Watchlist {
		rep := r.EvaluateTicker(ctx, ticker)
		switch rep.Status {
		case model.StatusOK:
			evaluated++
		case model.StatusError:
			skipped++
		}
		reports = append(reports, rep)
	}
	return reports, evaluated, skipped
}

func (r *Runner) fetchIndices(ctx context.Context) []model.IndexStatus {
	out := make([]model.IndexStatus, 0, len(r.cfg.Indices))
	for _, idx := range r.cfg.Indices {
		ictx, cancel := context.WithTimeout(ctx, r.timeout())
		quote, err := r.fetcher.FetchIndex(ictx, idx.Name, idx.Symbol)
		cancel()
		if err != nil {
			log.Printf("[WARN] index fetch failed for %s: %v", idx.Name, err)
			out = append(out, model.IndexStatus{Name: idx.Name})
			continue
		}
		out = append(out, model.IndexStatus{Name: idx.Name, Quote: quote})
	}
	return out
}

func (r *Runner) failCycle(ctx context.Context, trigger string, err error) {
	r.health.RecordFailure(err.Error())
	r.recordRun(trigger, "failure", 0, 0, err.Error())
	if sendErr := r.sender.Broadcast(ctx, []string{notifier.FormatCycleError(err)}); sendErr != nil {
		log.Printf("[ERROR] failed to send error notice: %v", sendErr)
	}
}

func (r *Runner) recordRun(trigger, status string, evaluated, skipped int, errText string) {
	rec := &recorder.RunRecord{
		Trigger:   trigger,
		Status:    status,
		Evaluated: evaluated,
		Skipped:   skipped,
		Err:       errText,
	}
	if err := r.recorder.RecordRun(rec); err != nil {
		log.Printf("[WARN] record run: %v", err)
	}
}

func (r *Runner) timeout() time.Duration {
	return time.Duration(r.cfg.Market.TimeoutSeconds) * time.Second
}

// istLocation returns Asia/Kolkata, falling back to a fixed IST offset
// when the host has no tzdata.
func istLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+30*60)
}
