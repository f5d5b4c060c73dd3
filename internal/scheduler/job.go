package scheduler

import (
	"context"
	"time"
)

// historyLimit caps the in-memory results kept per job
const historyLimit = 100

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job once. A returned error triggers a retry.
	Run(ctx context.Context) error

	// Schedule is a 6-field cron expression (seconds first), e.g. "0 30 16 * * 1-5"
	Schedule() string
}

// JobResult is one execution of a job
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"` // previous run still in progress
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the most recent results of one job
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest past the limit
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	out := make([]JobResult, n)
	copy(out, h.Results[len(h.Results)-n:])
	return out
}

// SuccessRate is successes over executed (non-skipped) runs, 0 when none ran
func (h *JobHistory) SuccessRate() float64 {
	ran, ok := 0, 0
	for _, r := range h.Results {
		if r.Skipped {
			continue
		}
		ran++
		if r.Success {
			ok++
		}
	}
	if ran == 0 {
		return 0
	}
	return float64(ok) / float64(ran)
}
