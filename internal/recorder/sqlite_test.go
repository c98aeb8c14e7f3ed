package recorder

import (
	"path/filepath"
	"testing"

	"stockpulse/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	err = r.RecordRun(&RunRecord{Trigger: "schedule", Status: "success", Evaluated: 4, Skipped: 1})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	err = r.RecordSignal(&model.SignalResult{
		Ticker:  "MCX",
		Signal:  model.SignalBuy,
		Pattern: "Breakout",
		Snapshot: model.IndicatorSnapshot{
			Close: 8654.30, RSI: 63.8, VolumeRatio: 1.72,
		},
		Flags: model.Flags{MACDBullish: true, EMABullish: true, VolumeSpike: true},
	})
	if err != nil {
		t.Fatalf("record signal: %v", err)
	}

	var runs int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected 1 run row, got %d", runs)
	}

	var (
		signal string
		flags  int
	)
	err = r.db.QueryRow("SELECT signal, flags FROM signals WHERE ticker = ?", "MCX").Scan(&signal, &flags)
	if err != nil {
		t.Fatalf("query signal: %v", err)
	}
	if signal != "BUY" || flags != 3 {
		t.Errorf("unexpected signal row: %s flags=%d", signal, flags)
	}
}

func TestSQLiteRecorder_MigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	r, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Close()

	// Reopening must not fail on existing tables.
	r2, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	r2.Close()
}
