package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"swipehire/internal/common"
	"swipehire/internal/metrics"
)

var errorCollector atomic.Pointer[metrics.Collector]

// SetErrorCollector makes Error count 5xx responses.
func SetErrorCollector(collector *metrics.Collector) {
	errorCollector.Store(collector)
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, err error) {
	payload := errorPayload{Code: common.CodeInternal, Message: "internal error"}
	var appErr *common.Error
	if errors.As(err, &appErr) {
		payload.Code = appErr.Code
		payload.Fields = appErr.Fields
		if appErr.Code != common.CodeInternal {
			payload.Message = appErr.Message
		}
	}
	status := StatusFor(payload.Code)
	if status >= http.StatusInternalServerError {
		errorCollector.Load().IncErrors()
	}
	JSON(w, status, errorBody{Error: payload})
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict:
		return http.StatusConflict
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
