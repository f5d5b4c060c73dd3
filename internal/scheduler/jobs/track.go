package jobs

import (
	"context"
	"time"

	"github.com/wonny/tickerscope/internal/tracker"
	"github.com/wonny/tickerscope/pkg/logger"
)

// ReturnTracker grades pending picks
type ReturnTracker interface {
	Run(ctx context.Context, now time.Time) (tracker.RunSummary, error)
}

// TrackReturnsJob fills forward returns for past scan results
type TrackReturnsJob struct {
	schedule string
	tracker  ReturnTracker
	logger   *logger.Logger
	now      func() time.Time
}

// NewTrackReturnsJob creates a new track-returns job
func NewTrackReturnsJob(schedule string, t ReturnTracker, log *logger.Logger) *TrackReturnsJob {
	return &TrackReturnsJob{
		schedule: schedule,
		tracker:  t,
		logger:   log.WithComponent("track_job"),
		now:      time.Now,
	}
}

// Name returns the job name
func (j *TrackReturnsJob) Name() string { return "track_returns" }

// Schedule returns the cron schedule (default: 18:00 daily)
func (j *TrackReturnsJob) Schedule() string { return j.schedule }

// Run executes one tracking pass
func (j *TrackReturnsJob) Run(ctx context.Context) error {
	summary, err := j.tracker.Run(ctx, j.now())
	if err != nil {
		return err
	}
	j.logger.WithFields(map[string]interface{}{
		"picks":   summary.Picks,
		"updated": summary.Updated,
		"no_data": summary.NoData,
		"failed":  summary.Failed,
	}).Info("Scheduled return tracking finished")
	return nil
}
