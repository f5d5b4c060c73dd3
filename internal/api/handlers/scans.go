package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/internal/scan"
	"github.com/wonny/tickerscope/pkg/logger"
)

// ScanReader reads persisted scan results
type ScanReader interface {
	Latest(ctx context.Context, limit int) ([]contracts.ScanResult, error)
}

// Analyzer runs the decision pipeline for one ticker without persisting
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) scan.Result
}

// ScanHandler serves scan results and on-demand analysis
type ScanHandler struct {
	reader   ScanReader
	analyzer Analyzer // nil = analyze endpoint disabled
	logger   *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(reader ScanReader, analyzer Analyzer, log *logger.Logger) *ScanHandler {
	return &ScanHandler{reader: reader, analyzer: analyzer, logger: log}
}

// Latest returns the most recent scan results
// GET /api/scans/latest?limit=50
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 50, 500)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}

	results, err := h.reader.Latest(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest scans")
		respondError(w, http.StatusInternalServerError, "Failed to load scan results")
		return
	}
	if results == nil {
		results = []contracts.ScanResult{}
	}
	respondJSON(w, http.StatusOK, results)
}

// Analyze runs a dry-run analysis
// GET /api/analyze/{ticker}
func (h *ScanHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, "Analysis is not enabled")
		return
	}

	tickers := scan.NormalizeTickers([]string{mux.Vars(r)["ticker"]})
	if len(tickers) == 0 || strings.ContainsAny(tickers[0], "/ ") {
		respondError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}

	res := h.analyzer.Analyze(r.Context(), tickers[0])
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"admitted": res.Admitted,
		"reason":   res.Reason,
		"analysis": res.Analysis,
	})
}
