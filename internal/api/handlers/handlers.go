package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/session"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	store *session.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store *session.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		store: store,
		log:   log,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns := h.store.Transactions()

	if source := r.URL.Query().Get("source"); source != "" {
		filtered := make([]domain.Transaction, 0, len(txns))
		for _, t := range txns {
			if t.Source == source {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}

	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, txns)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx.ID = id

	if err := h.store.UpdateTransaction(tx); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	// A hand-picked category becomes part of the known set.
	if tx.Category != "" {
		h.store.AddCategory(tx.Category)
	}

	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteTransaction(id); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// DeleteBySource handles DELETE /api/transactions?source={source}
func (h *TransactionsHandler) DeleteBySource(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source is required")
		return
	}

	removed := h.store.DeleteBySource(source)
	h.log.Info().Str("source", source).Int("removed", removed).Msg("Deleted transactions by source")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source":  source,
		"removed": removed,
	})
}

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	store *session.Store
	log   zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(store *session.Store, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		store: store,
		log:   log,
	}
}

// ListCategories handles GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Categories()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory handles POST /api/categories
func (h *CategoriesHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	h.store.AddCategory(req.Name)
	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// RenameCategory handles PUT /api/categories/{name}
// Transactions and rules referring to the old name follow the rename.
func (h *CategoriesHandler) RenameCategory(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.store.RenameCategory(name, req.Name); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"from": name, "to": req.Name})
}

// DeleteCategory handles DELETE /api/categories/{name}
func (h *CategoriesHandler) DeleteCategory(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.store.DeleteCategory(name); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}
