package handlers

import (
	"net/http"

	"swipehire/internal/app"
	"swipehire/internal/domain/job"
	"swipehire/internal/http/response"
)

// JobHandler receives job snapshots from the posting service.
type JobHandler struct {
	jobs        *app.JobService
	internalKey string
}

func NewJobHandler(jobs *app.JobService, internalKey string) *JobHandler {
	return &JobHandler{jobs: jobs, internalKey: internalKey}
}

func (h *JobHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if !requireInternalAuth(w, r, h.internalKey) {
		return
	}
	var req job.Job
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	saved, err := h.jobs.Sync(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, saved)
}
