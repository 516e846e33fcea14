package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"ledgerlens/internal/api/middleware"
	"ledgerlens/internal/jobs"
)

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store    jobs.JobStore
	canceler jobs.Canceler
	log      zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, canceler jobs.Canceler, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store:    store,
		canceler: canceler,
		log:      log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	task, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, task)
}

// CancelJob handles POST /api/jobs/{id}/cancel
func (h *JobsHandler) CancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if err := h.canceler.Cancel(jobID); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	h.log.Info().Str("job_id", jobID).Msg("Job cancellation requested")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": "cancelling",
	})
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
