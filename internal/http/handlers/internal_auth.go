package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"swipehire/internal/http/response"
)

const (
	internalAuthHeader    = "Authorization"
	internalAuthAltHeader = "X-Internal-Key"
)

// requireInternalAuth accepts the shared key either as X-Internal-Key or as
// a bearer Authorization header.
func requireInternalAuth(w http.ResponseWriter, r *http.Request, internalKey string) bool {
	key := strings.TrimSpace(internalKey)
	if key == "" {
		response.Error(w, errUnauthorized())
		return false
	}
	altValue := strings.TrimSpace(r.Header.Get(internalAuthAltHeader))
	value := strings.TrimSpace(r.Header.Get(internalAuthHeader))
	if constantEqual(altValue, key) || constantEqual(value, "Bearer "+key) {
		return true
	}
	response.Error(w, errUnauthorized())
	return false
}

func constantEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
