package scheduler

import (
	"context"
	"testing"
)

type stubReporter struct {
	triggers []string
}

func (s *stubReporter) RunCycle(_ context.Context, trigger string) error {
	s.triggers = append(s.triggers, trigger)
	return nil
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), &stubReporter{})
	if err := s.Register("0 0 9 * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Fatalf("expected one entry, got %d", len(s.Cron.Entries()))
	}
}

func TestRegister_BadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &stubReporter{})
	if err := s.Register("not a cron line"); err == nil {
		t.Fatal("expected an error for a malformed schedule")
	}
}

func TestRunNow(t *testing.T) {
	rep := &stubReporter{}
	s := NewScheduler(context.Background(), rep)
	s.RunNow()
	if len(rep.triggers) != 1 || rep.triggers[0] != "startup" {
		t.Fatalf("unexpected triggers %v", rep.triggers)
	}
}
