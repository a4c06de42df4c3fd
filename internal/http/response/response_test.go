package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipehire/internal/common"
	"swipehire/internal/metrics"
)

func TestErrorMapsCodes(t *testing.T) {
	cases := map[common.Code]int{
		common.CodeInvalidTransition: http.StatusUnprocessableEntity,
		common.CodeNotFound:          http.StatusNotFound,
		common.CodeConflict:          http.StatusConflict,
		common.CodeValidation:        http.StatusBadRequest,
		common.CodeUnauthorized:      http.StatusUnauthorized,
		common.CodeForbidden:         http.StatusForbidden,
		common.CodeRateLimited:       http.StatusTooManyRequests,
		common.CodeInternal:          http.StatusInternalServerError,
	}
	for code, status := range cases {
		rec := httptest.NewRecorder()
		Error(rec, common.NewError(code, "boom", nil))
		assert.Equal(t, status, rec.Code, code)
	}
}

func TestErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, common.NewValidationError("invalid request", map[string]string{"job_id": "required"}))

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_argument", body.Error.Code)
	assert.Equal(t, "invalid request", body.Error.Message)
	assert.Equal(t, "required", body.Error.Fields["job_id"])
}

func TestInternalErrorsHideCauseAndCount(t *testing.T) {
	collector := metrics.NewCollector()
	SetErrorCollector(collector)
	defer SetErrorCollector(nil)

	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, uint64(1), collector.Snapshot().Errors)
}
