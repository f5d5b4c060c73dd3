package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tickerscope/internal/api/handlers"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/internal/scheduler"
	"github.com/wonny/tickerscope/pkg/database"
	"github.com/wonny/tickerscope/pkg/logger"
)

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Healthy: f.err == nil}, f.err
}

type fakeReporter struct{ days int }

func (f *fakeReporter) Report(_ context.Context, _ time.Time, days int) ([]contracts.AccuracyReport, error) {
	f.days = days
	return []contracts.AccuracyReport{{Classification: contracts.ClassRunner, Samples: 4}}, nil
}

type fakeRules struct {
	rules   []contracts.AlertRule
	created *contracts.AlertRule
}

func (f *fakeRules) ListRules(context.Context, bool) ([]contracts.AlertRule, error) {
	return f.rules, nil
}

func (f *fakeRules) CreateRule(_ context.Context, r *contracts.AlertRule) (int64, error) {
	f.created = r
	return 7, nil
}

func (f *fakeRules) SetEnabled(_ context.Context, id int64, _ bool) error {
	if id != 7 {
		return errors.New("alert rule not found")
	}
	return nil
}

type fakeScans struct{}

func (fakeScans) Latest(context.Context, int) ([]contracts.ScanResult, error) { return nil, nil }

type fakeAnalyzer struct{}

func (fakeAnalyzer) Analyze(_ context.Context, ticker string) scan.Result {
	return scan.Result{Admitted: true, Analysis: contracts.Analysis{Ticker: ticker}}
}

type fakeJobs struct {
	mu  sync.Mutex
	ran []string
}

func (f *fakeJobs) JobNames() []string { return []string{"scan"} }
func (f *fakeJobs) Stats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"scan": {JobName: "scan", TotalRuns: 2}}
}
func (f *fakeJobs) RunJob(name string) (scheduler.JobResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, name)
	return scheduler.JobResult{JobName: name, Success: true}, nil
}

func newTestRouter(health HealthChecker) (http.Handler, *fakeReporter, *fakeRules, *fakeJobs) {
	log := logger.Nop()
	rep, rules, jobs := &fakeReporter{}, &fakeRules{}, &fakeJobs{}
	return NewRouter(Routes{
		Health:   health,
		Accuracy: handlers.NewAccuracyHandler(rep, log),
		Rules:    handlers.NewRuleHandler(rules, log),
		Scans:    handlers.NewScanHandler(fakeScans{}, fakeAnalyzer{}, log),
		Jobs:     handlers.NewJobHandler(jobs, log),
	}, log), rep, rules, jobs
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _, _ := newTestRouter(nil)
	rec := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	h, _, _, _ = newTestRouter(fakeHealth{err: errors.New("down")})
	rec = do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestAccuracy(t *testing.T) {
	h, rep, _, _ := newTestRouter(nil)

	rec := do(t, h, "GET", "/api/accuracy?days=14", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, rep.days)

	var body struct {
		Window string                     `json:"window"`
		Report []contracts.AccuracyReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "14d", body.Window)
	require.Len(t, body.Report, 1)

	do(t, h, "GET", "/api/accuracy", "")
	assert.Equal(t, 30, rep.days, "default window")

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/accuracy?days=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/accuracy?days=abc", "").Code)
}

func TestRules(t *testing.T) {
	h, _, rules, _ := newTestRouter(nil)

	rec := do(t, h, "GET", "/api/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, "POST", "/api/rules", `{"name":"runners","enabled":true,"alert_type":"runner","channels":["Discord"],"conditions":{"classification":["runner"],"min_attention":70}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, rules.created)
	assert.Equal(t, []string{"discord"}, rules.created.Channels)
	assert.Contains(t, rec.Body.String(), `"id":7`)

	rec = do(t, h, "POST", "/api/rules", `{"name":"x","channels":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"channels"`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/api/rules", `{"bogus":1}`).Code)

	assert.Equal(t, http.StatusOK, do(t, h, "PATCH", "/api/rules/7", `{"enabled":false}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "PATCH", "/api/rules/8", `{"enabled":false}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PATCH", "/api/rules/7", `{}`).Code)
}

func TestScans(t *testing.T) {
	h, _, _, _ := newTestRouter(nil)

	rec := do(t, h, "GET", "/api/scans/latest?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/api/scans/latest?limit=9999", "").Code)

	rec = do(t, h, "GET", "/api/analyze/$gme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"GME"`)
}

func TestJobs(t *testing.T) {
	h, _, _, jobs := newTestRouter(nil)

	rec := do(t, h, "GET", "/api/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_runs":2`)

	assert.Equal(t, http.StatusAccepted, do(t, h, "POST", "/api/jobs/scan/run", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "POST", "/api/jobs/nope/run", "").Code)

	require.Eventually(t, func() bool {
		jobs.mu.Lock()
		defer jobs.mu.Unlock()
		return len(jobs.ran) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRecovery(t *testing.T) {
	log := logger.Nop()
	r := NewRouter(Routes{Scans: handlers.NewScanHandler(nil, fakeAnalyzer{}, log)}, log)
	// nil reader → panic → 500
	rec := do(t, r, "GET", "/api/scans/latest", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
