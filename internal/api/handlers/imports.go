package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/importer"
	"ledgerlens/internal/session"
	"ledgerlens/internal/tabular"
)

// maxUploadBytes caps the size of an uploaded statement. Bank exports are
// small; anything beyond this is a mistake.
const maxUploadBytes = 32 << 20

// ImportsHandler handles statement upload endpoints.
type ImportsHandler struct {
	store *session.Store
	log   zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(store *session.Store, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		store: store,
		log:   log,
	}
}

// previewResponse is what the mapping screen renders: the detected headers,
// a few sample rows and the heuristic's best guess at a column mapping.
type previewResponse struct {
	Headers []string             `json:"headers"`
	Preview [][]string           `json:"preview"`
	Mapping domain.ColumnMapping `json:"mapping"`
	Rows    int                  `json:"rows"`
}

// Preview handles POST /api/import/preview
// The request is multipart form data with a "file" part and an optional
// "settings" part carrying JSON import settings.
func (h *ImportsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, header, settings, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	grid, err := tabular.Read(header.Filename, file, settings.Delimiter)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var sample []string
	if len(grid.Rows) > 0 {
		sample = grid.Rows[0]
	}

	middleware.WriteJSON(w, http.StatusOK, previewResponse{
		Headers: grid.Headers,
		Preview: grid.Preview,
		Mapping: importer.GuessMapping(grid.Headers, sample),
		Rows:    len(grid.Rows),
	})
}

// commitResponse reports what an import produced.
type commitResponse struct {
	Imported int                 `json:"imported"`
	Failures []domain.RowFailure `json:"failures"`
	Source   string              `json:"source"`
}

// Commit handles POST /api/import/commit
// Multipart form data: "file", optional "settings" (JSON), optional
// "mapping" (JSON) overriding the guessed columns.
func (h *ImportsHandler) Commit(w http.ResponseWriter, r *http.Request) {
	file, header, settings, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	var mapping *domain.ColumnMapping
	if raw := r.FormValue("mapping"); raw != "" {
		var m domain.ColumnMapping
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid mapping")
			return
		}
		mapping = &m
	}

	state := &importer.State{
		Filename: header.Filename,
		Reader:   file,
		Settings: settings,
		Mapping:  mapping,
		Source:   header.Filename,
		Rules:    h.store.Rules(),
	}

	pipeline := importer.NewImportPipeline(h.log)
	if err := pipeline.Execute(r.Context(), state); err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Import failed")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.store.AddTransactions(state.Result.Transactions)
	for _, t := range state.Result.Transactions {
		if t.Category != domain.Uncategorized {
			h.store.AddCategory(t.Category)
		}
	}

	h.log.Info().
		Str("filename", header.Filename).
		Int("imported", len(state.Result.Transactions)).
		Int("failed", len(state.Result.Failures)).
		Msg("Statement imported")

	failures := state.Result.Failures
	if failures == nil {
		failures = []domain.RowFailure{}
	}
	middleware.WriteJSON(w, http.StatusOK, commitResponse{
		Imported: len(state.Result.Transactions),
		Failures: failures,
		Source:   header.Filename,
	})
}

// parseUpload pulls the file part and settings out of a multipart request.
// On failure it writes the error response and returns ok=false.
func (h *ImportsHandler) parseUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, domain.ImportSettings, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return nil, nil, domain.ImportSettings{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A file part is required")
		return nil, nil, domain.ImportSettings{}, false
	}

	settings := h.store.Settings()
	if raw := r.FormValue("settings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			file.Close()
			middleware.WriteError(w, http.StatusBadRequest, "Invalid settings")
			return nil, nil, domain.ImportSettings{}, false
		}
	}

	return file, header, settings, true
}
