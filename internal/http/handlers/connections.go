package handlers

import (
	"net/http"

	"swipehire/internal/app"
	"swipehire/internal/domain/connection"
	"swipehire/internal/http/response"
)

type ConnectionHandler struct {
	connections *app.ConnectionService
}

func NewConnectionHandler(connections *app.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	developerID, err := parseOptionalID(r.URL.Query().Get("developerId"), "developerId")
	if err != nil {
		response.Error(w, err)
		return
	}
	board, err := h.connections.ListFor(r.Context(), sess, developerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, board)
}

type swipeDeveloperRequest struct {
	TargetID  string `json:"targetId"`
	Direction string `json:"direction"`
}

func (h *ConnectionHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req swipeDeveloperRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	targetID, err := parseID(req.TargetID, "targetId")
	if err != nil {
		response.Error(w, err)
		return
	}
	direction, err := connection.ParseDirection(req.Direction)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.connections.Swipe(r.Context(), sess, targetID, direction)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeConnectionResult(w, result)
}

type respondRequest struct {
	ActorID  string `json:"actorId"`
	TargetID string `json:"targetId"`
	Action   string `json:"action"`
}

func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	actorID, err := parseOptionalID(req.ActorID, "actorId")
	if err != nil {
		response.Error(w, err)
		return
	}
	targetID, err := parseID(req.TargetID, "targetId")
	if err != nil {
		response.Error(w, err)
		return
	}
	action, err := connection.ParseResponse(req.Action)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.connections.Respond(r.Context(), sess, actorID, targetID, action)
	if err != nil {
		response.Error(w, err)
		return
	}
	writeConnectionResult(w, result)
}

func writeConnectionResult(w http.ResponseWriter, result *app.ConnectionResult) {
	switch {
	case result == nil || result.Connection == nil:
		response.NoContent(w)
	case result.Removed:
		response.JSON(w, http.StatusOK, result)
	default:
		response.JSON(w, http.StatusOK, result.Connection)
	}
}
