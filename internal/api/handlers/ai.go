package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerlens/internal/ai"
	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/jobs"
	"ledgerlens/internal/session"
)

// AIHandler handles hosted-model endpoints. A nil assistant means no
// provider is configured; those endpoints then answer 503.
type AIHandler struct {
	store     *session.Store
	assistant ai.Assistant
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(store *session.Store, assistant ai.Assistant, publisher jobs.Publisher, log zerolog.Logger) *AIHandler {
	return &AIHandler{
		store:     store,
		assistant: assistant,
		publisher: publisher,
		log:       log,
	}
}

func (h *AIHandler) requireAssistant(w http.ResponseWriter) bool {
	if h.assistant == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No AI provider configured")
		return false
	}
	return true
}

// Categorize handles POST /api/ai/categorize
// It enqueues a background job that sends uncategorized transactions to the
// model; poll /api/jobs/{id} for progress.
func (h *AIHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	if !h.requireAssistant(w) {
		return
	}

	task := &jobs.Task{Type: jobs.JobTypeAICategorize}
	if err := h.publisher.Publish(r.Context(), task); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue AI categorization job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	h.log.Info().Str("job_id", task.JobID).Msg("AI categorization job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": task.JobID,
		"status": string(task.Status),
	})
}

// MineRules handles POST /api/ai/mine-rules
// The mined suggestions are returned for review, not applied; the user
// decides which become rules.
func (h *AIHandler) MineRules(w http.ResponseWriter, r *http.Request) {
	if !h.requireAssistant(w) {
		return
	}

	suggestions, err := h.assistant.MineRules(r.Context(), h.store.Transactions())
	if err != nil {
		h.log.Error().Err(err).Msg("Rule mining failed")
		middleware.WriteError(w, http.StatusBadGateway, "Rule mining failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// Analyze handles POST /api/ai/analyze
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !h.requireAssistant(w) {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Query is required")
		return
	}

	result, err := h.assistant.Analyze(r.Context(), req.Query, h.store.Transactions())
	if err != nil {
		h.log.Error().Err(err).Msg("Analysis failed")
		middleware.WriteError(w, http.StatusBadGateway, "Analysis failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
