package health

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTracker_RecordAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "health.json")
	tr, err := NewTracker(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.RecordSuccess(1)
	tr.RecordFailure("nse down")

	snap := tr.Snapshot()
	if snap.TotalRuns != 2 || snap.Successes != 1 || snap.Failures != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.ErrorCount != 1 {
		t.Errorf("expected one skipped-ticker error, got %d", snap.ErrorCount)
	}
	if snap.LastStatus != "❌ Failed" || snap.LastError != "nse down" {
		t.Errorf("unexpected last run fields: %+v", snap)
	}

	reload, err := NewTracker(path)
	if err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	got := reload.Snapshot()
	if got.TotalRuns != 2 || got.Successes != 1 || got.Failures != 1 || got.ErrorCount != 1 {
		t.Errorf("state not persisted: %+v", got)
	}
	if !got.StartTime.Equal(snap.StartTime) {
		t.Errorf("start time must survive restarts: %v vs %v", got.StartTime, snap.StartTime)
	}
}

func TestTracker_SuccessClearsLastError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health.json")
	tr, err := NewTracker(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.RecordFailure("boom")
	tr.RecordSuccess(0)

	snap := tr.Snapshot()
	if snap.LastError != "" || snap.LastStatus != "✅ Success" {
		t.Errorf("success must clear the previous error: %+v", snap)
	}
}

func TestTracker_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	tr, err := NewTracker(path)
	if err != nil {
		t.Fatalf("corrupt state must not be fatal: %v", err)
	}
	snap := tr.Snapshot()
	if snap.TotalRuns != 0 || snap.StartTime.IsZero() {
		t.Errorf("expected a fresh state, got %+v", snap)
	}
}
