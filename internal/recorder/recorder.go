package recorder

import "stockpulse/internal/model"

// RunRecord summarizes one report cycle.
type RunRecord struct {
	Trigger   string // "schedule", "command" or "startup"
	Status    string // "success" or "failure"
	Evaluated int
	Skipped   int
	Err       string
}

// Recorder persists run history and emitted signals for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	RecordSignal(res *model.SignalResult) error
	Close() error
}
