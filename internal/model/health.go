package model

import "time"

// HealthState tracks process-level run history. It is the only state the
// bot persists and reads back.
type HealthState struct {
	StartTime  time.Time `json:"start_time"`
	LastRun    time.Time `json:"last_run"`
	LastStatus string    `json:"last_status"`
	LastError  string    `json:"last_error"`
	TotalRuns  int       `json:"total_runs"`
	Successes  int       `json:"successes"`
	Failures   int       `json:"failures"`
	ErrorCount int       `json:"error_count"`
}
