package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/recurring"
	"ledgerlens/internal/session"
)

// SessionHandler handles whole-session endpoints: export, import, merge and
// the import settings.
type SessionHandler struct {
	store *session.Store
	log   zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(store *session.Store, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		store: store,
		log:   log,
	}
}

// Export handles GET /api/session/export
// The response is a self-contained JSON snapshot suitable for re-import.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ExportJSON()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export session")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to export session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="ledgerlens-session.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/session/import
// The snapshot replaces the whole session.
func (h *SessionHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	snap, err := session.ParseSnapshot(data)
	if err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.store.Load(snap)
	h.log.Info().Int("transactions", len(snap.Transactions)).Msg("Session imported")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "imported",
		"transactions": len(snap.Transactions),
	})
}

// mergeRequest wraps a snapshot with the per-field merge switches.
type mergeRequest struct {
	Snapshot session.Snapshot     `json:"snapshot"`
	Options  session.MergeOptions `json:"options"`
}

// Merge handles POST /api/session/merge
// Selected snapshot fields are merged into the live session; colliding ids
// get fresh ones so merging a session's own export duplicates rather than
// overwrites.
func (h *SessionHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.store.Merge(req.Snapshot, req.Options)

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "merged"})
}

// GetSettings handles GET /api/session/settings
func (h *SessionHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Settings())
}

// UpdateSettings handles PUT /api/session/settings
func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.ImportSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.store.SetSettings(settings)
	middleware.WriteJSON(w, http.StatusOK, settings)
}

// RecurringHandler reports likely recurring charges.
type RecurringHandler struct {
	store *session.Store
	log   zerolog.Logger
}

// NewRecurringHandler creates a new recurring charges handler.
func NewRecurringHandler(store *session.Store, log zerolog.Logger) *RecurringHandler {
	return &RecurringHandler{
		store: store,
		log:   log,
	}
}

// ListRecurring handles GET /api/recurring
func (h *RecurringHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	groups := recurring.Detect(h.store.Transactions(), recurring.DefaultLimit)
	if groups == nil {
		groups = []recurring.Group{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"recurring": groups,
		"count":     len(groups),
	})
}
