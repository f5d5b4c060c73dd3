package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tickerscope/internal/scheduler"
	"github.com/wonny/tickerscope/pkg/logger"
)

// JobRunner exposes the scheduler
type JobRunner interface {
	JobNames() []string
	Stats() map[string]scheduler.JobStats
	RunJob(name string) (scheduler.JobResult, error)
}

// JobHandler serves scheduler status and manual triggers
type JobHandler struct {
	runner JobRunner
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(runner JobRunner, log *logger.Logger) *JobHandler {
	return &JobHandler{runner: runner, logger: log}
}

// Stats returns per-job statistics
// GET /api/jobs
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.runner.Stats())
}

// Run triggers a job in the background
// POST /api/jobs/{name}/run
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	known := false
	for _, n := range h.runner.JobNames() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		respondError(w, http.StatusNotFound, "Unknown job: "+name)
		return
	}

	go func() {
		if _, err := h.runner.RunJob(name); err != nil {
			h.logger.WithError(err).WithField("job", name).Error("Manual job run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
