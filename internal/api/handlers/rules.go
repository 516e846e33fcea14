package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/classify"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/jobs"
	"ledgerlens/internal/rules"
	"ledgerlens/internal/session"
)

// RulesHandler handles categorization rule endpoints.
type RulesHandler struct {
	store     *session.Store
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewRulesHandler creates a new rules handler.
func NewRulesHandler(store *session.Store, publisher jobs.Publisher, log zerolog.Logger) *RulesHandler {
	return &RulesHandler{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// ListRules handles GET /api/rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	ruleSet := h.store.Rules()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": ruleSet,
		"count": len(ruleSet),
	})
}

// CreateRule handles POST /api/rules
func (h *RulesHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule domain.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if rule.Keyword == "" || rule.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Keyword and category are required")
		return
	}

	created := h.store.AddRule(rule)
	h.store.AddCategory(created.Category)

	middleware.WriteJSON(w, http.StatusCreated, created)
}

// DeleteRule handles DELETE /api/rules/{id}
func (h *RulesHandler) DeleteRule(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteRule(id); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// Reapply handles POST /api/rules/reapply
// It enqueues a background job that re-runs the rule set over the whole
// session, so large sessions do not block the request.
func (h *RulesHandler) Reapply(w http.ResponseWriter, r *http.Request) {
	task := &jobs.Task{Type: jobs.JobTypeApplyRules}
	if err := h.publisher.Publish(r.Context(), task); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue rule reapply job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	h.log.Info().Str("job_id", task.JobID).Msg("Rule reapply job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": task.JobID,
		"status": string(task.Status),
	})
}

// Categorize handles GET /api/rules/categorize?description={text}
// It answers with the category the current rule set would assign.
func (h *RulesHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	if description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	category := rules.Categorize(description, h.store.Rules(), h.log)
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"description": description,
		"category":    category,
	})
}

// Suggest handles GET /api/rules/suggest?description={text}
// Candidate categories come from a classifier trained on the categorized
// portion of the session, so suggestions improve as the user categorizes.
func (h *RulesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")
	if description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "description is required")
		return
	}

	suggester, err := classify.Train(h.store.Transactions())
	if errors.Is(err, classify.ErrNotEnoughData) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"description": description,
			"suggestions": []string{},
		})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to train suggester")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute suggestions")
		return
	}

	suggestions := suggester.Suggest(description)
	if suggestions == nil {
		suggestions = []string{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"description": description,
		"suggestions": suggestions,
	})
}
