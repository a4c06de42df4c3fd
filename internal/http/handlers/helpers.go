package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"swipehire/internal/common"
	"swipehire/internal/domain/session"
	"swipehire/internal/http/middleware"
)

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return common.NewValidationError("request body is required", nil)
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return common.NewValidationError("request body too large", nil)
		case errors.Is(err, io.EOF):
			return common.NewValidationError("request body is required", nil)
		default:
			return common.NewValidationError("invalid json body", nil)
		}
	}
	return nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
}

func sessionFrom(r *http.Request) (session.Session, error) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return session.Session{}, errUnauthorized()
	}
	return sess, nil
}

// parseID validates a required identifier; field names the request field.
func parseID(value, field string) (common.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", common.NewValidationError("invalid request", map[string]string{field: field + " is required"})
	}
	id, err := common.ParseUUID(value)
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{field: "invalid identifier"})
	}
	return id, nil
}

// parseOptionalID is parseID for fields that may be left out.
func parseOptionalID(value, field string) (common.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return parseID(value, field)
}
