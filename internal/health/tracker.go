package health

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stockpulse/internal/model"
)

// Tracker records run outcomes with concurrency safety and persists them
// across restarts.
type Tracker struct {
	mu       sync.Mutex
	state    *model.HealthState
	filePath string
}

// NewTracker creates a Tracker, loading or initializing state from disk.
// An unreadable state file is replaced rather than treated as fatal.
func NewTracker(filePath string) (*Tracker, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	state, err := LoadState(filePath)
	if err != nil {
		log.Printf("[WARN] health state unreadable, starting fresh: %v", err)
		state = &model.HealthState{}
	}
	if state.StartTime.IsZero() {
		state.StartTime = time.Now().UTC()
	}
	t := &Tracker{state: state, filePath: filePath}
	if err := t.save(); err != nil {
		return nil, err
	}
	return t, nil
}

// Snapshot returns a copy of the current health state.
func (t *Tracker) Snapshot() model.HealthState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.state
}

// RecordSuccess marks a completed run. skipped counts tickers that failed
// without sinking the whole cycle.
func (t *Tracker) RecordSuccess(skipped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.TotalRuns++
	t.state.Successes++
	t.state.LastRun = time.Now().UTC()
	t.state.LastStatus = "✅ Success"
	t.state.LastError = ""
	t.state.ErrorCount += skipped
	if err := t.save(); err != nil {
		log.Printf("[ERROR] failed to save health state: %v", err)
	}
}

// RecordFailure marks a failed run.
func (t *Tracker) RecordFailure(errText string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.TotalRuns++
	t.state.Failures++
	t.state.LastRun = time.Now().UTC()
	t.state.LastStatus = "❌ Failed"
	t.state.LastError = errText
	if err := t.save(); err != nil {
		log.Printf("[ERROR] failed to save health state: %v", err)
	}
}

func (t *Tracker) save() error {
	return SaveState(t.filePath, t.state)
}
