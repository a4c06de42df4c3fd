package handlers

import (
	"net/http"

	"swipehire/internal/app"
	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/session"
	"swipehire/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
}

func NewApplicationHandler(applications *app.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// List serves the company board (?jobId=) or the developer buckets
// (?developerId=&bucket=) depending on the session role.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	query := r.URL.Query()
	switch sess.Role {
	case session.RoleCompany:
		jobID, err := parseID(query.Get("jobId"), "jobId")
		if err != nil {
			response.Error(w, err)
			return
		}
		board, err := h.applications.ListForJob(r.Context(), sess, jobID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, board)
	case session.RoleDeveloper:
		developerID, err := parseOptionalID(query.Get("developerId"), "developerId")
		if err != nil {
			response.Error(w, err)
			return
		}
		bucket, err := application.ParseBucket(query.Get("bucket"))
		if err != nil {
			response.Error(w, err)
			return
		}
		board, err := h.applications.ListForDeveloper(r.Context(), sess, developerID, bucket)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, board)
	default:
		response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
	}
}

type swipeJobRequest struct {
	JobID     string `json:"jobId"`
	Direction string `json:"direction"`
}

func (h *ApplicationHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req swipeJobRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := parseID(req.JobID, "jobId")
	if err != nil {
		response.Error(w, err)
		return
	}
	direction, err := application.ParseDirection(req.Direction)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.applications.SwipeJob(r.Context(), sess, jobID, direction)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result == nil {
		response.NoContent(w)
		return
	}
	status := http.StatusOK
	if result.Application.Version == 1 {
		status = http.StatusCreated
	}
	response.JSON(w, status, result.Application)
}

type applicationActionRequest struct {
	DeveloperID string `json:"developerId"`
	JobID       string `json:"jobId"`
	Action      string `json:"action"`
}

func (h *ApplicationHandler) Act(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req applicationActionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	developerID, err := parseID(req.DeveloperID, "developerId")
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := parseID(req.JobID, "jobId")
	if err != nil {
		response.Error(w, err)
		return
	}
	action, err := application.ParseAction(req.Action)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.applications.ApplyAction(r.Context(), sess, application.Key{DeveloperID: developerID, JobID: jobID}, action)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result.Removed {
		response.JSON(w, http.StatusOK, result)
		return
	}
	response.JSON(w, http.StatusOK, result.Application)
}
