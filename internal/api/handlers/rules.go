package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/tickerscope/internal/alerts"
	"github.com/wonny/tickerscope/internal/contracts"
	"github.com/wonny/tickerscope/pkg/logger"
)

// RuleStore manages alert rules
type RuleStore interface {
	ListRules(ctx context.Context, enabledOnly bool) ([]contracts.AlertRule, error)
	CreateRule(ctx context.Context, rule *contracts.AlertRule) (int64, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
}

// RuleHandler serves alert rule CRUD
type RuleHandler struct {
	store  RuleStore
	logger *logger.Logger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(store RuleStore, log *logger.Logger) *RuleHandler {
	return &RuleHandler{store: store, logger: log}
}

// List returns alert rules
// GET /api/rules?enabled=true
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"

	rules, err := h.store.ListRules(r.Context(), enabledOnly)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list alert rules")
		respondError(w, http.StatusInternalServerError, "Failed to list alert rules")
		return
	}
	if rules == nil {
		rules = []contracts.AlertRule{}
	}
	respondJSON(w, http.StatusOK, rules)
}

// Create stores a new rule
// POST /api/rules
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rule contracts.AlertRule
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := alerts.ValidateRule(&rule); err != nil {
		var re *alerts.RuleError
		if errors.As(err, &re) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": re.Message,
				"field": re.Field,
			})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.store.CreateRule(r.Context(), &rule)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create alert rule")
		respondError(w, http.StatusInternalServerError, "Failed to create alert rule")
		return
	}
	rule.ID = id

	h.logger.WithFields(map[string]interface{}{
		"rule_id": id,
		"name":    rule.Name,
	}).Info("Alert rule created")
	respondJSON(w, http.StatusCreated, rule)
}

type enableRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetEnabled toggles a rule
// PATCH /api/rules/{id}
func (h *RuleHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid rule id")
		return
	}

	var req enableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		respondError(w, http.StatusBadRequest, "Body must be {\"enabled\": true|false}")
		return
	}

	if err := h.store.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		h.logger.WithError(err).WithField("rule_id", id).Warn("Failed to update alert rule")
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"enabled": *req.Enabled,
	})
}
