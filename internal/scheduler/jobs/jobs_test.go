package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/internal/tracker"
	"github.com/wonny/tickerscope/pkg/logger"
)

type fakeRunner struct {
	got     []string
	summary scan.Summary
}

func (r *fakeRunner) Run(_ context.Context, tickers []string) scan.Summary {
	r.got = tickers
	s := r.summary
	s.Tickers = len(tickers)
	return s
}

func TestScanJob(t *testing.T) {
	runner := &fakeRunner{summary: scan.Summary{Analyzed: 2}}
	builds := 0
	job := NewScanJob("0 30 16 * * 1-5",
		func(context.Context) (ScanRunner, error) { builds++; return runner, nil },
		func(context.Context) ([]string, error) { return []string{"GME", "AMC"}, nil },
		logger.Nop())

	assert.Equal(t, "scan", job.Name())
	assert.Equal(t, "0 30 16 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"GME", "AMC"}, runner.got)
	assert.Equal(t, 2, builds, "pipeline rebuilt per run")
}

func TestScanJob_Errors(t *testing.T) {
	tickers := func(context.Context) ([]string, error) { return []string{"GME"}, nil }

	allFailed := NewScanJob("@daily",
		func(context.Context) (ScanRunner, error) { return &fakeRunner{summary: scan.Summary{Failed: 1}}, nil },
		tickers, logger.Nop())
	assert.Error(t, allFailed.Run(context.Background()))

	buildErr := NewScanJob("@daily",
		func(context.Context) (ScanRunner, error) { return nil, errors.New("db down") },
		tickers, logger.Nop())
	assert.Error(t, buildErr.Run(context.Background()))

	empty := NewScanJob("@daily",
		func(context.Context) (ScanRunner, error) { t.Fatal("must not build"); return nil, nil },
		func(context.Context) ([]string, error) { return nil, nil }, logger.Nop())
	assert.NoError(t, empty.Run(context.Background()))

	sourceErr := NewScanJob("@daily", nil,
		func(context.Context) ([]string, error) { return nil, errors.New("trending down") }, logger.Nop())
	assert.Error(t, sourceErr.Run(context.Background()))
}

type fakeTracker struct {
	err error
	at  time.Time
}

func (f *fakeTracker) Run(_ context.Context, now time.Time) (tracker.RunSummary, error) {
	f.at = now
	return tracker.RunSummary{Picks: 3, Updated: 2, NoData: 1}, f.err
}

func TestTrackReturnsJob(t *testing.T) {
	ft := &fakeTracker{}
	job := NewTrackReturnsJob("0 0 18 * * *", ft, logger.Nop())
	fixed := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	assert.Equal(t, "track_returns", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixed, ft.at)

	ft.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}
