package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Reporter runs a full report cycle.
type Reporter interface {
	RunCycle(ctx context.Context, trigger string) error
}

// Scheduler manages the daily report cron task.
type Scheduler struct {
	Cron     *cron.Cron
	Reporter Reporter
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, rep Reporter) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Reporter: rep,
		Ctx:      ctx,
	}
}

// Register installs the daily report job. The expression uses six
// fields and may carry a CRON_TZ= prefix.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyReport); err != nil {
		return fmt.Errorf("register daily report: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
	for _, entry := range s.Cron.Entries() {
		log.Printf("[INFO] next report scheduled for %s", entry.Next.Format(time.RFC3339))
	}
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the report immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	if err := s.Reporter.RunCycle(s.Ctx, "startup"); err != nil {
		log.Printf("[ERROR] startup report: %v", err)
	}
}

func (s *Scheduler) dailyReport() {
	if err := s.Reporter.RunCycle(s.Ctx, "schedule"); err != nil {
		log.Printf("[ERROR] scheduled report: %v", err)
	}
}
