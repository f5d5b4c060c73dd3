package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// AccuracyReporter aggregates graded picks
type AccuracyReporter interface {
	Report(ctx context.Context, now time.Time, days int) ([]contracts.AccuracyReport, error)
}

// AccuracyHandler serves classification accuracy
type AccuracyHandler struct {
	reporter AccuracyReporter
	logger   *logger.Logger
	now      func() time.Time
}

// NewAccuracyHandler creates a new accuracy handler
func NewAccuracyHandler(reporter AccuracyReporter, log *logger.Logger) *AccuracyHandler {
	return &AccuracyHandler{reporter: reporter, logger: log, now: time.Now}
}

// GetAccuracy returns per-classification accuracy
// GET /api/accuracy?days=30
func (h *AccuracyHandler) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(r, "days", 30, 365)
	if !ok {
		respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	reports, err := h.reporter.Report(r.Context(), h.now(), days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build accuracy report")
		respondError(w, http.StatusInternalServerError, "Failed to build accuracy report")
		return
	}
	if reports == nil {
		reports = []contracts.AccuracyReport{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"window": fmt.Sprintf("%dd", days),
		"days":   days,
		"report": reports,
	})
}
